package visits

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-explore/internal/app/models"
	"github.com/FACorreiaa/loci-explore/internal/app/observability/metrics"
)

var _ Repository = (*PostgresRepository)(nil)

// Repository persists the insert-only visit log.
type Repository interface {
	// RecordVisit inserts a visit unless one with the same monument name exists.
	RecordVisit(ctx context.Context, monumentName string, at time.Time) (models.VisitResult, error)
	// RecentVisits returns up to limit visits, newest first.
	RecentVisits(ctx context.Context, limit int) ([]models.VisitRecord, error)
}

// DBTX is the subset of pgxpool.Pool used by the repository; pgxmock satisfies it too.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	logger *zap.Logger
	pgpool DBTX
}

func NewPostgresRepository(pgpool DBTX, logger *zap.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

// RecordVisit checks for an existing record, then inserts. The unique index on
// monument_name turns a lost check-then-insert race into a no-op insert.
func (r *PostgresRepository) RecordVisit(ctx context.Context, monumentName string, at time.Time) (models.VisitResult, error) {
	ctx, span := otel.Tracer("VisitsRepo").Start(ctx, "RecordVisit", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "monument_visits"),
		attribute.String("monument.name", monumentName),
	))
	defer span.End()
	start := time.Now()
	defer metrics.RecordDBQuery(ctx, "record_visit", start)

	l := r.logger.With(zap.String("method", "RecordVisit"), zap.String("monument", monumentName))

	var exists bool
	err := r.pgpool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM monument_visits WHERE monument_name = $1)`,
		monumentName,
	).Scan(&exists)
	if err != nil {
		l.Error("Failed to check existing visit", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		metrics.RecordDBError(ctx, "record_visit")
		return models.VisitResult{}, fmt.Errorf("database error checking visit: %w", err)
	}
	if exists {
		l.Debug("Monument already visited")
		span.SetStatus(codes.Ok, "Already visited")
		return models.VisitResult{IsNewVisit: false}, nil
	}

	id := uuid.New()
	tag, err := r.pgpool.Exec(ctx, `
		INSERT INTO monument_visits (id, monument_name, first_visit, visited_at)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (monument_name) DO NOTHING`,
		id, monumentName, at,
	)
	if err != nil {
		l.Error("Failed to insert visit", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		metrics.RecordDBError(ctx, "record_visit")
		return models.VisitResult{}, fmt.Errorf("database error recording visit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		l.Warn("Concurrent first visit already recorded")
		span.SetStatus(codes.Ok, "Already visited")
		return models.VisitResult{IsNewVisit: false}, nil
	}

	span.SetAttributes(attribute.String("db.visit.id", id.String()))
	span.SetStatus(codes.Ok, "Visit recorded")
	return models.VisitResult{IsNewVisit: true, InsertedID: id.String()}, nil
}

func (r *PostgresRepository) RecentVisits(ctx context.Context, limit int) ([]models.VisitRecord, error) {
	ctx, span := otel.Tracer("VisitsRepo").Start(ctx, "RecentVisits", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "monument_visits"),
		attribute.Int("limit", limit),
	))
	defer span.End()
	start := time.Now()
	defer metrics.RecordDBQuery(ctx, "recent_visits", start)

	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("id::text", "monument_name", "visited_at", "first_visit").
		From("monument_visits").
		OrderBy("visited_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("building recent visits query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query recent visits", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		metrics.RecordDBError(ctx, "recent_visits")
		return nil, fmt.Errorf("database error fetching visits: %w", err)
	}
	defer rows.Close()

	visits := make([]models.VisitRecord, 0, limit)
	for rows.Next() {
		var v models.VisitRecord
		if err := rows.Scan(&v.ID, &v.MonumentName, &v.Timestamp, &v.FirstVisit); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("scanning visit row: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("iterating visit rows: %w", err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(visits)))
	span.SetStatus(codes.Ok, "Visits fetched")
	return visits, nil
}
