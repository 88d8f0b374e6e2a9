package affinity

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

// redisHashClient is the subset of *redis.Client the repository needs.
type redisHashClient interface {
	HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.StringStringMapCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

var _ Repository = (*RedisAffinityRepo)(nil)

// RedisAffinityRepo keeps one hash per user, field per tag. HINCRBY makes
// each increment atomic.
type RedisAffinityRepo struct {
	logger *slog.Logger
	client redisHashClient
}

func NewRedisAffinityRepo(client redisHashClient, logger *slog.Logger) *RedisAffinityRepo {
	return &RedisAffinityRepo{
		logger: logger,
		client: client,
	}
}

func affinityKey(userID uuid.UUID) string {
	return "affinity:" + userID.String()
}

func (r *RedisAffinityRepo) Get(ctx context.Context, userID uuid.UUID) (types.AffinityRecord, error) {
	ctx, span := otel.Tracer("AffinityRepo").Start(ctx, "RedisGet", trace.WithAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("db.operation", "HGETALL"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "RedisGet"), slog.String("userID", userID.String()))

	fields, err := r.client.HGetAll(ctx, affinityKey(userID)).Result()
	if err != nil {
		l.ErrorContext(ctx, "Failed to read affinity hash", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "HGETALL failed")
		return nil, fmt.Errorf("redis error fetching affinity: %w", err)
	}

	record := make(types.AffinityRecord, len(fields))
	for tag, raw := range fields {
		count, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			l.WarnContext(ctx, "Skipping non-numeric affinity field", slog.String("tag", tag), slog.String("value", raw))
			continue
		}
		record[types.InterestTag(tag)] = count
	}

	span.SetStatus(codes.Ok, "Affinity fetched")
	return record, nil
}

func (r *RedisAffinityRepo) Increment(ctx context.Context, userID uuid.UUID, tag types.InterestTag) error {
	ctx, span := otel.Tracer("AffinityRepo").Start(ctx, "RedisIncrement", trace.WithAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("db.operation", "HINCRBY"),
		attribute.String("db.user.id", userID.String()),
		attribute.String("affinity.tag", string(tag)),
	))
	defer span.End()

	if err := r.client.HIncrBy(ctx, affinityKey(userID), string(tag), 1).Err(); err != nil {
		r.logger.ErrorContext(ctx, "Failed to increment affinity hash",
			slog.String("userID", userID.String()),
			slog.String("tag", string(tag)),
			slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "HINCRBY failed")
		return fmt.Errorf("redis error incrementing affinity: %w", err)
	}

	span.SetStatus(codes.Ok, "Affinity incremented")
	return nil
}

func (r *RedisAffinityRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
