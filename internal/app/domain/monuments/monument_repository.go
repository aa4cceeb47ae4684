package monuments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-explore/internal/app/models"
	"github.com/FACorreiaa/loci-explore/internal/app/observability/metrics"
)

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*MongoRepository)(nil)
)

// Repository reads monument descriptions. Missing monuments yield models.ErrNotFound.
type Repository interface {
	GetDescription(ctx context.Context, monumentName string) (string, error)
}

// Querier is the read side of pgxpool.Pool.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	logger *zap.Logger
	pgpool Querier
}

func NewPostgresRepository(pgpool Querier, logger *zap.Logger) *PostgresRepository {
	return &PostgresRepository{logger: logger, pgpool: pgpool}
}

func (r *PostgresRepository) GetDescription(ctx context.Context, monumentName string) (string, error) {
	ctx, span := otel.Tracer("MonumentsRepo").Start(ctx, "GetDescription", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "monument_descriptions"),
		attribute.String("monument.name", monumentName),
	))
	defer span.End()
	start := time.Now()
	defer metrics.RecordDBQuery(ctx, "get_description", start)

	var description string
	err := r.pgpool.QueryRow(ctx,
		`SELECT monument_description FROM monument_descriptions WHERE monument_name = $1`,
		monumentName,
	).Scan(&description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Monument not found")
			return "", fmt.Errorf("monument %q: %w", monumentName, models.ErrNotFound)
		}
		r.logger.Error("Failed to query monument description", zap.String("monument", monumentName), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		metrics.RecordDBError(ctx, "get_description")
		return "", fmt.Errorf("database error fetching description: %w", err)
	}

	span.SetStatus(codes.Ok, "Description fetched")
	return description, nil
}

// Finder is the lookup side of *mongo.Collection.
type Finder interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
}

type MongoRepository struct {
	logger     *zap.Logger
	collection Finder
}

func NewMongoRepository(collection Finder, logger *zap.Logger) *MongoRepository {
	return &MongoRepository{logger: logger, collection: collection}
}

func (r *MongoRepository) GetDescription(ctx context.Context, monumentName string) (string, error) {
	ctx, span := otel.Tracer("MonumentsRepo").Start(ctx, "GetDescription", trace.WithAttributes(
		attribute.String("db.system", "mongodb"),
		attribute.String("db.operation", "findOne"),
		attribute.String("db.mongodb.collection", "Description of monuments"),
		attribute.String("monument.name", monumentName),
	))
	defer span.End()
	start := time.Now()
	defer metrics.RecordDBQuery(ctx, "get_description", start)

	var doc models.MonumentDescription
	err := r.collection.FindOne(ctx, bson.M{"monumentName": monumentName}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			span.SetStatus(codes.Error, "Monument not found")
			return "", fmt.Errorf("monument %q: %w", monumentName, models.ErrNotFound)
		}
		r.logger.Error("Failed to query monument description", zap.String("monument", monumentName), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "findOne failed")
		metrics.RecordDBError(ctx, "get_description")
		return "", fmt.Errorf("database error fetching description: %w", err)
	}

	span.SetStatus(codes.Ok, "Description fetched")
	return doc.MonumentDescription, nil
}
