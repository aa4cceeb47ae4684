package visits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-explore/internal/app/models"
	"github.com/FACorreiaa/loci-explore/internal/app/observability/metrics"
)

var _ Repository = (*MongoRepository)(nil)

// Collection is the subset of *mongo.Collection used by the repository.
type Collection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

type MongoRepository struct {
	logger     *zap.Logger
	collection Collection
}

func NewMongoRepository(collection Collection, logger *zap.Logger) *MongoRepository {
	return &MongoRepository{
		logger:     logger,
		collection: collection,
	}
}

func (r *MongoRepository) RecordVisit(ctx context.Context, monumentName string, at time.Time) (models.VisitResult, error) {
	ctx, span := otel.Tracer("VisitsRepo").Start(ctx, "RecordVisit", trace.WithAttributes(
		attribute.String("db.system", "mongodb"),
		attribute.String("db.operation", "insertOne"),
		attribute.String("db.mongodb.collection", "Monuments-visited"),
		attribute.String("monument.name", monumentName),
	))
	defer span.End()
	start := time.Now()
	defer metrics.RecordDBQuery(ctx, "record_visit", start)

	l := r.logger.With(zap.String("method", "RecordVisit"), zap.String("monument", monumentName))

	err := r.collection.FindOne(ctx, bson.M{"monumentName": monumentName}).Err()
	switch {
	case err == nil:
		l.Debug("Monument already visited")
		span.SetStatus(codes.Ok, "Already visited")
		return models.VisitResult{IsNewVisit: false}, nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		l.Error("Failed to check existing visit", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "findOne failed")
		metrics.RecordDBError(ctx, "record_visit")
		return models.VisitResult{}, fmt.Errorf("database error checking visit: %w", err)
	}

	res, err := r.collection.InsertOne(ctx, bson.M{
		"monumentName": monumentName,
		"timestamp":    at,
		"firstVisit":   true,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			l.Warn("Concurrent first visit already recorded")
			span.SetStatus(codes.Ok, "Already visited")
			return models.VisitResult{IsNewVisit: false}, nil
		}
		l.Error("Failed to insert visit", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "insertOne failed")
		metrics.RecordDBError(ctx, "record_visit")
		return models.VisitResult{}, fmt.Errorf("database error recording visit: %w", err)
	}

	result := models.VisitResult{IsNewVisit: true}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		result.InsertedID = id.Hex()
	case string:
		result.InsertedID = id
	}
	span.SetStatus(codes.Ok, "Visit recorded")
	return result, nil
}

func (r *MongoRepository) RecentVisits(ctx context.Context, limit int) ([]models.VisitRecord, error) {
	ctx, span := otel.Tracer("VisitsRepo").Start(ctx, "RecentVisits", trace.WithAttributes(
		attribute.String("db.system", "mongodb"),
		attribute.String("db.operation", "find"),
		attribute.String("db.mongodb.collection", "Monuments-visited"),
		attribute.Int("limit", limit),
	))
	defer span.End()
	start := time.Now()
	defer metrics.RecordDBQuery(ctx, "recent_visits", start)

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		r.logger.Error("Failed to query recent visits", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "find failed")
		metrics.RecordDBError(ctx, "recent_visits")
		return nil, fmt.Errorf("database error fetching visits: %w", err)
	}
	defer cursor.Close(ctx)

	visits := make([]models.VisitRecord, 0, limit)
	if err := cursor.All(ctx, &visits); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("decoding visits: %w", err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(visits)))
	span.SetStatus(codes.Ok, "Visits fetched")
	return visits, nil
}
