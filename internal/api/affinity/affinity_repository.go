// Package affinity keeps per-user interest counters.
package affinity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

// Repository stores AffinityRecords. Increment must be atomic per (user, tag).
type Repository interface {
	// Get returns the user's record; an unknown user yields an empty record.
	Get(ctx context.Context, userID uuid.UUID) (types.AffinityRecord, error)
	// Increment adds one to the tag's count, creating it at 1 when missing.
	Increment(ctx context.Context, userID uuid.UUID, tag types.InterestTag) error
	Ping(ctx context.Context) error
}

// pgxPool is the subset of *pgxpool.Pool the repository needs.
type pgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

var _ Repository = (*PostgresAffinityRepo)(nil)

type PostgresAffinityRepo struct {
	logger *slog.Logger
	pgpool pgxPool
}

func NewPostgresAffinityRepo(pool pgxPool, logger *slog.Logger) *PostgresAffinityRepo {
	return &PostgresAffinityRepo{
		logger: logger,
		pgpool: pool,
	}
}

func (r *PostgresAffinityRepo) Get(ctx context.Context, userID uuid.UUID) (types.AffinityRecord, error) {
	ctx, span := otel.Tracer("AffinityRepo").Start(ctx, "Get", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "user_interest_affinity"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Get"), slog.String("userID", userID.String()))
	l.DebugContext(ctx, "Fetching affinity record")

	query := `
        SELECT tag, visit_count
        FROM user_interest_affinity
        WHERE user_id = $1`

	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query affinity", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching affinity: %w", err)
	}
	defer rows.Close()

	record := make(types.AffinityRecord)
	for rows.Next() {
		var tag string
		var count int64
		if err := rows.Scan(&tag, &count); err != nil {
			l.ErrorContext(ctx, "Failed to scan affinity row", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "DB scan failed")
			return nil, fmt.Errorf("database error scanning affinity: %w", err)
		}
		record[types.InterestTag(tag)] = count
	}
	if err := rows.Err(); err != nil {
		l.ErrorContext(ctx, "Error iterating affinity rows", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB rows failed")
		return nil, fmt.Errorf("database error reading affinity: %w", err)
	}

	span.SetAttributes(attribute.Int("affinity.tags", len(record)))
	span.SetStatus(codes.Ok, "Affinity fetched")
	return record, nil
}

func (r *PostgresAffinityRepo) Increment(ctx context.Context, userID uuid.UUID, tag types.InterestTag) error {
	ctx, span := otel.Tracer("AffinityRepo").Start(ctx, "Increment", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPSERT"),
		attribute.String("db.sql.table", "user_interest_affinity"),
		attribute.String("db.user.id", userID.String()),
		attribute.String("affinity.tag", string(tag)),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Increment"), slog.String("userID", userID.String()), slog.String("tag", string(tag)))

	query := `
        INSERT INTO user_interest_affinity (user_id, tag, visit_count)
        VALUES ($1, $2, 1)
        ON CONFLICT (user_id, tag)
        DO UPDATE SET visit_count = user_interest_affinity.visit_count + 1, updated_at = now()`

	if _, err := r.pgpool.Exec(ctx, query, userID, string(tag)); err != nil {
		l.ErrorContext(ctx, "Failed to increment affinity", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPSERT failed")
		return fmt.Errorf("database error incrementing affinity: %w", err)
	}

	span.SetStatus(codes.Ok, "Affinity incremented")
	return nil
}

func (r *PostgresAffinityRepo) Ping(ctx context.Context) error {
	return r.pgpool.Ping(ctx)
}
