package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

// Query is one per-category request to the place provider.
type Query struct {
	Origin       types.Origin
	RadiusMeters int
	Category     types.CategoryCode
	Hint         string
}

// Provider searches places around an origin for a single category.
type Provider interface {
	Search(ctx context.Context, q Query) ([]types.ProviderRecord, error)
}

var _ Provider = (*HTTPProvider)(nil)

// ProviderConfig configures HTTPProvider.
type ProviderConfig struct {
	BaseURL          string
	APIKey           string
	BreakerFailures  uint32
	BreakerTimeout   time.Duration
	MaxResponseBytes int64
}

// HTTPProvider talks to a nearby-search API shaped like the Google Places
// legacy endpoint, behind a circuit breaker.
type HTTPProvider struct {
	cfg        ProviderConfig
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]types.ProviderRecord]
	logger     *slog.Logger
}

func NewHTTPProvider(cfg ProviderConfig, httpClient *http.Client, logger *slog.Logger) *HTTPProvider {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = 4 << 20
	}

	breaker := gobreaker.NewCircuitBreaker[[]types.ProviderRecord](gobreaker.Settings{
		Name:        "place-provider",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	return &HTTPProvider{
		cfg:        cfg,
		httpClient: httpClient,
		breaker:    breaker,
		logger:     logger,
	}
}

// BreakerState reports the breaker state, e.g. "closed" or "open".
func (p *HTTPProvider) BreakerState() string {
	return p.breaker.State().String()
}

type nearbySearchResponse struct {
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message"`
	Results      []nearbyResult `json:"results"`
}

type nearbyResult struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Vicinity string `json:"vicinity"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	OpeningHours     *struct {
		OpenNow *bool `json:"open_now"`
	} `json:"opening_hours"`
	Photos []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
	Types []string `json:"types"`
}

func (p *HTTPProvider) Search(ctx context.Context, q Query) ([]types.ProviderRecord, error) {
	ctx, span := otel.Tracer("PlaceProvider").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("category", string(q.Category)),
		attribute.Int("radius", q.RadiusMeters),
	))
	defer span.End()

	records, err := p.breaker.Execute(func() ([]types.ProviderRecord, error) {
		return p.search(ctx, q)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("place provider unavailable: %w", err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "place search failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("results.count", len(records)))
	span.SetStatus(codes.Ok, "place search completed")
	return records, nil
}

func (p *HTTPProvider) search(ctx context.Context, q Query) ([]types.ProviderRecord, error) {
	params := url.Values{}
	params.Set("location", strconv.FormatFloat(q.Origin.Lat, 'f', -1, 64)+","+strconv.FormatFloat(q.Origin.Lng, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(q.RadiusMeters))
	params.Set("type", string(q.Category))
	if q.Hint != "" {
		params.Set("keyword", q.Hint)
	}
	if p.cfg.APIKey != "" {
		params.Set("key", p.cfg.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/nearbysearch/json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build place search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place search request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, p.cfg.MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read place search response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("place search: unexpected status code: %s", res.Status)
	}

	var payload nearbySearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode place search response: %w", err)
	}
	switch payload.Status {
	case "OK", "ZERO_RESULTS":
	default:
		return nil, fmt.Errorf("place search: provider status %q: %s", payload.Status, payload.ErrorMessage)
	}

	records := make([]types.ProviderRecord, 0, len(payload.Results))
	for _, r := range payload.Results {
		if r.PlaceID == "" {
			continue
		}
		records = append(records, r.toRecord())
	}
	return records, nil
}

func (r nearbyResult) toRecord() types.ProviderRecord {
	rec := types.ProviderRecord{
		ID:          r.PlaceID,
		Name:        r.Name,
		Address:     r.Vicinity,
		Latitude:    r.Geometry.Location.Lat,
		Longitude:   r.Geometry.Location.Lng,
		Rating:      r.Rating,
		ReviewCount: r.UserRatingsTotal,
		Types:       r.Types,
	}
	if r.OpeningHours != nil {
		rec.OpenNow = r.OpeningHours.OpenNow
	}
	for _, ph := range r.Photos {
		if ph.PhotoReference != "" {
			rec.PhotoRefs = append(rec.PhotoRefs, ph.PhotoReference)
		}
	}
	return rec
}
