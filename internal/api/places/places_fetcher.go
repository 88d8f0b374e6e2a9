package places

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/koushik8686/GeoGuide-sub000/app/observability/metrics"
	"github.com/koushik8686/GeoGuide-sub000/internal/api"
	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

var (
	ErrAllFetchesFailed = fmt.Errorf("%w: every category fetch failed", api.ErrUpstream)
	ErrNoCategories     = errors.New("no categories to fetch")
)

// DefaultFetchTimeout bounds each per-category provider call.
const DefaultFetchTimeout = 5 * time.Second

// Fetcher fans a search out over categories and waits for every call to settle.
type Fetcher interface {
	Fetch(ctx context.Context, origin types.Origin, radius int, categories []types.CategoryCode, hint string) ([]types.CategoryResult, error)
}

var _ Fetcher = (*FetcherImpl)(nil)

type FetcherImpl struct {
	provider Provider
	cache    *cache.Cache
	timeout  time.Duration
	logger   *slog.Logger
}

// NewFetcherImpl creates a Fetcher. A nil cache disables result caching.
func NewFetcherImpl(provider Provider, c *cache.Cache, timeout time.Duration, logger *slog.Logger) *FetcherImpl {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &FetcherImpl{
		provider: provider,
		cache:    c,
		timeout:  timeout,
		logger:   logger,
	}
}

// Fetch issues one provider call per category concurrently. A failed call
// yields an empty result carrying its error; only when every call fails does
// Fetch return ErrAllFetchesFailed. Calls are detached from ctx cancellation
// and bounded by the per-call timeout only. Results keep category order.
func (f *FetcherImpl) Fetch(ctx context.Context, origin types.Origin, radius int, categories []types.CategoryCode, hint string) ([]types.CategoryResult, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Fetch", trace.WithAttributes(
		attribute.Int("categories.count", len(categories)),
		attribute.Int("radius", radius),
	))
	defer span.End()

	l := f.logger.With(slog.String("method", "Fetch"))

	if len(categories) == 0 {
		span.RecordError(ErrNoCategories)
		span.SetStatus(codes.Error, "no categories")
		return nil, ErrNoCategories
	}

	detached := context.WithoutCancel(ctx)
	results := make([]types.CategoryResult, len(categories))

	var g errgroup.Group
	for i, category := range categories {
		g.Go(func() error {
			results[i] = f.fetchOne(detached, Query{
				Origin:       origin,
				RadiusMeters: radius,
				Category:     category,
				Hint:         hint,
			})
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			l.WarnContext(ctx, "Category fetch failed, treating as empty",
				slog.String("category", string(r.Category)),
				slog.Any("error", r.Err))
		}
	}
	span.SetAttributes(attribute.Int("categories.failed", failed))

	if failed == len(results) {
		err := fmt.Errorf("%w: %d of %d categories", ErrAllFetchesFailed, failed, len(results))
		l.ErrorContext(ctx, "All category fetches failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "all fetches failed")
		return results, err
	}

	span.SetStatus(codes.Ok, "fetch settled")
	return results, nil
}

func (f *FetcherImpl) fetchOne(ctx context.Context, q Query) types.CategoryResult {
	m := metrics.Get()
	key := cacheKey(q)
	if f.cache != nil {
		if cached, ok := f.cache.Get(key); ok {
			m.PlaceFetchTotal.Add(ctx, 1, metric.WithAttributes(
				attribute.String("category", string(q.Category)),
				attribute.String("outcome", "cached"),
			))
			return types.CategoryResult{Category: q.Category, Records: cached.([]types.ProviderRecord), Cached: true}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	records, err := f.provider.Search(callCtx, q)
	m.PlaceFetchDurationSeconds.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("category", string(q.Category)),
	))

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.PlaceFetchTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", string(q.Category)),
		attribute.String("outcome", outcome),
	))

	if err != nil {
		return types.CategoryResult{Category: q.Category, Records: []types.ProviderRecord{}, Err: err}
	}
	if records == nil {
		records = []types.ProviderRecord{}
	}
	if f.cache != nil {
		f.cache.SetDefault(key, records)
	}
	return types.CategoryResult{Category: q.Category, Records: records}
}

func cacheKey(q Query) string {
	return fmt.Sprintf("%.4f:%.4f:%d:%s:%s", q.Origin.Lat, q.Origin.Lng, q.RadiusMeters, q.Category, q.Hint)
}
