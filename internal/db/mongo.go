package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-explore/internal/pkg/config"
)

const (
	VisitsCollection       = "Monuments-visited"
	DescriptionsCollection = "Description of monuments"
)

// MongoPinger adapts a mongo client to Pinger.
type MongoPinger struct {
	Client *mongo.Client
}

func (p MongoPinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx, readpref.Primary())
}

// InitMongo connects a client. The driver connects lazily, so reachability is
// checked separately with WaitForDB.
func InitMongo(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*mongo.Client, error) {
	logger.Info("Initializing MongoDB client...", zap.String("database", cfg.Database))

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(5 * time.Second).
		SetAppName("loci-explore")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Error("Failed to create MongoDB client", zap.Error(err))
		return nil, fmt.Errorf("failed creating mongo client: %w", err)
	}
	return client, nil
}

// EnsureMongoIndexes creates the visit indexes; the unique name index keeps one
// record per monument even when two first visits race.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	visits := db.Collection(VisitsCollection)
	_, err := visits.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "monumentName", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("monumentName_unique"),
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("timestamp_desc"),
		},
	})
	if err != nil {
		logger.Error("Failed to create visit indexes", zap.Error(err))
		return fmt.Errorf("failed creating visit indexes: %w", err)
	}

	descriptions := db.Collection(DescriptionsCollection)
	_, err = descriptions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "monumentName", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("monumentName_unique"),
	})
	if err != nil {
		logger.Error("Failed to create description index", zap.Error(err))
		return fmt.Errorf("failed creating description index: %w", err)
	}

	logger.Info("MongoDB indexes ensured")
	return nil
}
