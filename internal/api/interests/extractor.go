package interests

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/koushik8686/GeoGuide-sub000/app/observability/metrics"
	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

// Extraction is the typed outcome of one extraction stage: either tags were
// extracted, or the stage was unavailable and the next one should run.
type Extraction struct {
	Tags   types.InterestSet
	Source types.InterestSource
	ok     bool
}

func Extracted(tags types.InterestSet, source types.InterestSource) Extraction {
	if len(tags) == 0 {
		return Unavailable()
	}
	return Extraction{Tags: tags, Source: source, ok: true}
}

func Unavailable() Extraction {
	return Extraction{}
}

func (e Extraction) Available() bool {
	return e.ok
}

// Stage is one strategy for turning free text into tags.
type Stage interface {
	Name() string
	Extract(ctx context.Context, query string) Extraction
}

var _ Service = (*ServiceImpl)(nil)

// Service turns free text into a non-empty InterestSet.
type Service interface {
	Extract(ctx context.Context, query string) Extraction
}

// ServiceImpl runs its stages in order and keeps the first one that yields
// tags. When every stage is unavailable the sentinel default tag is returned.
type ServiceImpl struct {
	logger *slog.Logger
	stages []Stage
}

func NewServiceImpl(logger *slog.Logger, stages ...Stage) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		stages: stages,
	}
}

func (s *ServiceImpl) Extract(ctx context.Context, query string) Extraction {
	ctx, span := otel.Tracer("InterestService").Start(ctx, "Extract", trace.WithAttributes(
		attribute.Int("query.length", len(query)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Extract"))

	result := Extraction{Tags: types.InterestSet{types.DefaultInterest}, Source: types.InterestSourceDefault, ok: true}
	if query != "" {
		for _, stage := range s.stages {
			if e := stage.Extract(ctx, query); e.Available() {
				result = e
				break
			}
			l.DebugContext(ctx, "Extraction stage unavailable, falling through", slog.String("stage", stage.Name()))
		}
	}

	metrics.Get().InterestExtractionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", string(result.Source)),
	))
	span.SetAttributes(
		attribute.String("interests.source", string(result.Source)),
		attribute.StringSlice("interests.tags", result.Tags.Strings()),
	)
	l.DebugContext(ctx, "Interests extracted",
		slog.String("source", string(result.Source)),
		slog.Any("tags", result.Tags.Strings()))
	return result
}

// KeywordStage is the deterministic keyword-table stage.
type KeywordStage struct{}

func (KeywordStage) Name() string { return string(types.InterestSourceKeywords) }

func (KeywordStage) Extract(_ context.Context, query string) Extraction {
	return Extracted(MatchKeywords(query), types.InterestSourceKeywords)
}
