// Package recommend is the client of the external tag recommender.
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/koushik8686/GeoGuide-sub000/app/observability/metrics"
	"github.com/koushik8686/GeoGuide-sub000/internal/api"
	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

// ErrRecommenderUnavailable wraps every failure to obtain recommendations.
var ErrRecommenderUnavailable = fmt.Errorf("%w: recommender unavailable", api.ErrUpstream)

// Recommender returns up to topN tags ordered by relevance for the user.
type Recommender interface {
	Recommend(ctx context.Context, userID uuid.UUID, affinity types.AffinityRecord, topN int) ([]types.InterestTag, error)
}

var _ Recommender = (*HTTPRecommender)(nil)

type HTTPRecommender struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPRecommender(baseURL string, httpClient *http.Client, logger *slog.Logger) *HTTPRecommender {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPRecommender{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

type recommendRequest struct {
	UserID   string           `json:"user_id"`
	Affinity map[string]int64 `json:"affinity"`
	TopN     int              `json:"top_n"`
}

type recommendResponse struct {
	Tags []string `json:"tags"`
}

// Recommend posts the affinity record to {baseURL}/recommend. The answer is
// normalised, deduplicated and cut to topN.
func (c *HTTPRecommender) Recommend(ctx context.Context, userID uuid.UUID, affinity types.AffinityRecord, topN int) ([]types.InterestTag, error) {
	ctx, span := otel.Tracer("RecommenderClient").Start(ctx, "Recommend", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.Int("affinity.tags", len(affinity)),
		attribute.Int("top_n", topN),
	))
	defer span.End()

	l := c.logger.With(slog.String("method", "Recommend"), slog.String("userID", userID.String()))

	tags, err := c.recommend(ctx, userID, affinity, topN)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.Get().RecommenderRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

	if err != nil {
		l.ErrorContext(ctx, "Recommender call failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "recommender call failed")
		return nil, fmt.Errorf("%w: %w", ErrRecommenderUnavailable, err)
	}

	span.SetAttributes(attribute.Int("tags.count", len(tags)))
	span.SetStatus(codes.Ok, "recommended")
	return tags, nil
}

func (c *HTTPRecommender) recommend(ctx context.Context, userID uuid.UUID, affinity types.AffinityRecord, topN int) ([]types.InterestTag, error) {
	payload := recommendRequest{
		UserID:   userID.String(),
		Affinity: make(map[string]int64, len(affinity)),
		TopN:     topN,
	}
	for tag, count := range affinity {
		payload.Affinity[string(tag)] = count
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recommend", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code: %s", res.Status)
	}

	var out recommendResponse
	if err := json.Unmarshal(resBody, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	raw := make([]types.InterestTag, 0, len(out.Tags))
	for _, t := range out.Tags {
		raw = append(raw, types.NormalizeTag(t))
	}
	tags := types.NewInterestSet(raw...)
	if topN > 0 && len(tags) > topN {
		tags = tags[:topN]
	}
	return []types.InterestTag(tags), nil
}
