// Package discovery runs the place search pipeline and the personalised feed.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/koushik8686/GeoGuide-sub000/internal/api/affinity"
	"github.com/koushik8686/GeoGuide-sub000/internal/api/categories"
	"github.com/koushik8686/GeoGuide-sub000/internal/api/interests"
	"github.com/koushik8686/GeoGuide-sub000/internal/api/places"
	"github.com/koushik8686/GeoGuide-sub000/internal/api/recommend"
	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

const (
	DefaultFeedSize = 5
	MaxFeedSize     = 20

	affinityWriteTimeout = 3 * time.Second
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Search(ctx context.Context, userID *uuid.UUID, req types.SearchRequest) (*types.NearbyResponse, error)
	Feed(ctx context.Context, userID uuid.UUID, req types.SearchRequest, limit *int) (*types.FeedResponse, error)
	Affinity(ctx context.Context, userID uuid.UUID) (*types.AffinityResponse, error)
	Ready(ctx context.Context) error
}

type ServiceImpl struct {
	logger      *slog.Logger
	extractor   interests.Service
	fetcher     places.Fetcher
	affinity    affinity.Service
	recommender recommend.Recommender
	feedSize    int

	// pending tracks affinity writes still running after their search returned.
	pending sync.WaitGroup
}

func NewServiceImpl(
	extractor interests.Service,
	fetcher places.Fetcher,
	affinityService affinity.Service,
	recommender recommend.Recommender,
	feedSize int,
	logger *slog.Logger,
) *ServiceImpl {
	if feedSize <= 0 {
		feedSize = DefaultFeedSize
	}
	return &ServiceImpl{
		logger:      logger,
		extractor:   extractor,
		fetcher:     fetcher,
		affinity:    affinityService,
		recommender: recommender,
		feedSize:    clampFeedSize(feedSize),
	}
}

// Search extracts interests from the query, maps them to categories, fans
// out to the provider and ranks the merged results. When userID is set the
// extracted tags are recorded as affinity in the background; that write
// never delays or fails the search.
func (s *ServiceImpl) Search(ctx context.Context, userID *uuid.UUID, req types.SearchRequest) (*types.NearbyResponse, error) {
	ctx, span := otel.Tracer("DiscoveryService").Start(ctx, "Search", trace.WithAttributes(
		attribute.Bool("user.identified", userID != nil),
		attribute.Int("query.length", len(req.Query)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Search"))

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}
	origin := req.Origin()
	radius := req.EffectiveRadius()

	extraction := s.extractor.Extract(ctx, req.Query)
	cats := categories.Map(extraction.Tags)
	span.SetAttributes(
		attribute.Int("radius", radius),
		attribute.StringSlice("interests", extraction.Tags.Strings()),
		attribute.Int("categories.count", len(cats)),
	)

	if userID != nil {
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			s.recordAffinity(ctx, *userID, extraction.Tags)
		}()
	}

	results, err := s.fetcher.Fetch(ctx, origin, radius, cats, extraction.Tags.Hint())
	if err != nil {
		l.ErrorContext(ctx, "Place fetch failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, fmt.Errorf("nearby search: %w", err)
	}

	ranked := places.Rank(origin, results)
	l.InfoContext(ctx, "Nearby search completed",
		slog.Int("results", len(ranked)),
		slog.String("interest_source", string(extraction.Source)))
	span.SetStatus(codes.Ok, "search completed")

	return &types.NearbyResponse{
		Places:         ranked,
		Count:          len(ranked),
		RadiusMeters:   radius,
		Categories:     cats,
		Interests:      extraction.Tags.Strings(),
		InterestSource: extraction.Source,
	}, nil
}

func (s *ServiceImpl) recordAffinity(ctx context.Context, userID uuid.UUID, tags types.InterestSet) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), affinityWriteTimeout)
	defer cancel()

	if err := s.affinity.Record(ctx, userID, tags); err != nil {
		s.logger.WarnContext(ctx, "Affinity not recorded, search continues",
			slog.String("userID", userID.String()),
			slog.Any("error", err))
	}
}

// Drain waits for background affinity writes to finish or for ctx to end.
// Call it once no more searches are being accepted.
func (s *ServiceImpl) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("affinity writes still pending: %w", ctx.Err())
	}
}

// Feed asks the recommender for the user's next tags and runs the search
// pipeline once per tag. A recommender failure fails the feed; a tag whose
// fetches all fail yields an empty list.
func (s *ServiceImpl) Feed(ctx context.Context, userID uuid.UUID, req types.SearchRequest, limit *int) (*types.FeedResponse, error) {
	ctx, span := otel.Tracer("DiscoveryService").Start(ctx, "Feed", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Feed"), slog.String("userID", userID.String()))

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}
	origin := req.Origin()
	radius := req.EffectiveRadius()
	n := s.feedSize
	if limit != nil {
		n = clampFeedSize(*limit)
	}

	record, err := s.affinity.Get(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "affinity fetch failed")
		return nil, fmt.Errorf("feed: %w", err)
	}

	tags, err := s.recommender.Recommend(ctx, userID, record, n)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recommender failed")
		return nil, fmt.Errorf("feed: %w", err)
	}
	tags = []types.InterestTag(types.NewInterestSet(tags...))
	if len(tags) > n {
		tags = tags[:n]
	}

	lists := make([][]types.EnrichedRecord, len(tags))
	var g errgroup.Group
	for i, tag := range tags {
		g.Go(func() error {
			set := types.InterestSet{tag}
			results, err := s.fetcher.Fetch(ctx, origin, radius, categories.Map(set), set.Hint())
			if err != nil {
				l.WarnContext(ctx, "No places for recommended tag", slog.String("tag", string(tag)), slog.Any("error", err))
				lists[i] = []types.EnrichedRecord{}
				return nil
			}
			lists[i] = places.Rank(origin, results)
			return nil
		})
	}
	_ = g.Wait()

	recs := make(map[types.InterestTag][]types.EnrichedRecord, len(tags))
	for i, tag := range tags {
		recs[tag] = lists[i]
	}

	l.InfoContext(ctx, "Feed assembled", slog.Int("tags", len(tags)))
	span.SetAttributes(attribute.Int("tags.count", len(tags)))
	span.SetStatus(codes.Ok, "feed assembled")

	return &types.FeedResponse{
		Tags:            tags,
		Recommendations: recs,
		RadiusMeters:    radius,
	}, nil
}

func (s *ServiceImpl) Affinity(ctx context.Context, userID uuid.UUID) (*types.AffinityResponse, error) {
	ctx, span := otel.Tracer("DiscoveryService").Start(ctx, "Affinity", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	record, err := s.affinity.Get(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "affinity fetch failed")
		return nil, err
	}
	return &types.AffinityResponse{UserID: userID, Interests: record.Entries()}, nil
}

// Ready reports whether the affinity store is reachable.
func (s *ServiceImpl) Ready(ctx context.Context) error {
	if err := s.affinity.Ping(ctx); err != nil {
		return errors.Join(errNotReady, err)
	}
	return nil
}

var errNotReady = errors.New("affinity store not reachable")

func clampFeedSize(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxFeedSize:
		return MaxFeedSize
	default:
		return n
	}
}
