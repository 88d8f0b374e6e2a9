package affinity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/koushik8686/GeoGuide-sub000/app/observability/metrics"
	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service records and reads per-user interest affinity.
type Service interface {
	Record(ctx context.Context, userID uuid.UUID, tags types.InterestSet) error
	Get(ctx context.Context, userID uuid.UUID) (types.AffinityRecord, error)
	Ping(ctx context.Context) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// Record increments every tag in tags once. The sentinel default tag is not
// an interest and is skipped. All tags are attempted; failures are joined.
func (s *ServiceImpl) Record(ctx context.Context, userID uuid.UUID, tags types.InterestSet) error {
	ctx, span := otel.Tracer("AffinityService").Start(ctx, "Record", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.StringSlice("tags", tags.Strings()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Record"), slog.String("userID", userID.String()))

	var errs []error
	for _, tag := range tags {
		if tag == types.DefaultInterest || tag == "" {
			continue
		}
		if err := s.repo.Increment(ctx, userID, tag); err != nil {
			metrics.Get().AffinityUpdateErrorsTotal.Add(ctx, 1)
			errs = append(errs, fmt.Errorf("tag %q: %w", tag, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		l.WarnContext(ctx, "Affinity update incomplete", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "affinity update failed")
		return fmt.Errorf("failed to record affinity: %w", err)
	}

	span.SetStatus(codes.Ok, "affinity recorded")
	return nil
}

func (s *ServiceImpl) Get(ctx context.Context, userID uuid.UUID) (types.AffinityRecord, error) {
	ctx, span := otel.Tracer("AffinityService").Start(ctx, "Get", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	record, err := s.repo.Get(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "affinity fetch failed")
		return nil, fmt.Errorf("failed to fetch affinity: %w", err)
	}
	if record == nil {
		record = types.AffinityRecord{}
	}
	return record, nil
}

func (s *ServiceImpl) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
