package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-explore/internal/app/domain/explore"
	"github.com/FACorreiaa/loci-explore/internal/app/domain/monuments"
	"github.com/FACorreiaa/loci-explore/internal/app/domain/visits"
	"github.com/FACorreiaa/loci-explore/internal/app/middleware"
	database "github.com/FACorreiaa/loci-explore/internal/db"
	"github.com/FACorreiaa/loci-explore/internal/pkg/config"
	"github.com/FACorreiaa/loci-explore/internal/routes"
)

// writeTimeoutMargin keeps the server write deadline past the chat backend timeout.
const writeTimeoutMargin = 10 * time.Second

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg         *config.Config
	logger      *zap.Logger
	dbPool      *pgxpool.Pool
	mongoClient *mongo.Client
	deps        routes.Dependencies
	router      http.Handler
}

// New connects the store selected by STORE_DRIVER and builds the repositories on top of it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		deps: routes.Dependencies{
			StoreDriver: cfg.Repositories.Driver,
			Chat:        cfg.Chat,
			Explore:     explore.DefaultConfig(),
		},
	}
	s.deps.Explore.AllowedOrigins = middleware.AllowedOrigins(cfg.CORSAllowedOrigins)

	var err error
	switch cfg.Repositories.Driver {
	case config.StoreDriverMongo:
		err = s.setupMongo(ctx)
	default:
		err = s.setupPostgres(ctx)
	}
	if err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// setupPostgres initializes the pool and runs migrations
func (s *Server) setupPostgres(ctx context.Context) error {
	s.logger.Info("Setting up database connection and migrations")

	dbConfig, err := database.NewDatabaseConfig(s.cfg, s.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database configuration: %w", err)
	}

	pool, err := database.Init(ctx, dbConfig.ConnectionURL, s.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database pool: %w", err)
	}
	s.dbPool = pool

	if !database.WaitForDB(ctx, pool, s.logger) {
		return fmt.Errorf("postgres at %s:%s is unreachable", s.cfg.Repositories.Postgres.Host, s.cfg.Repositories.Postgres.Port)
	}
	s.logger.Info("Connected to Postgres",
		zap.String("host", s.cfg.Repositories.Postgres.Host),
		zap.String("port", s.cfg.Repositories.Postgres.Port),
		zap.String("database", s.cfg.Repositories.Postgres.DB))

	if err = database.RunMigrations(dbConfig.MigrationURL(), s.logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	s.deps.Store = pool
	s.deps.Visits = visits.NewPostgresRepository(pool, s.logger)
	s.deps.Descriptions = monuments.NewPostgresRepository(pool, s.logger)

	s.logger.Info("Database setup completed successfully")
	return nil
}

// setupMongo connects the client. An unreachable server is not fatal: the
// status endpoint reports it and requests fail until it comes back.
func (s *Server) setupMongo(ctx context.Context) error {
	mongoCfg := s.cfg.Repositories.Mongo

	client, err := database.InitMongo(ctx, mongoCfg, s.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize mongo client: %w", err)
	}
	s.mongoClient = client

	pinger := database.MongoPinger{Client: client}
	db := client.Database(mongoCfg.Database)
	if database.WaitForDB(ctx, pinger, s.logger) {
		if err := database.EnsureMongoIndexes(ctx, db, s.logger); err != nil {
			s.logger.Warn("Continuing without mongo indexes", zap.Error(err))
		}
	} else {
		s.logger.Warn("MongoDB unreachable at startup, continuing", zap.String("database", mongoCfg.Database))
	}

	s.deps.Store = pinger
	s.deps.Visits = visits.NewMongoRepository(db.Collection(database.VisitsCollection), s.logger)
	s.deps.Descriptions = monuments.NewMongoRepository(db.Collection(database.DescriptionsCollection), s.logger)
	return nil
}

// Dependencies returns what the routes are built from
func (s *Server) Dependencies() routes.Dependencies {
	return s.deps
}

// HTTPServer creates and configures the HTTP server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              ":" + s.cfg.ServerPort,
		Handler:           s.router,
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      s.cfg.Chat.Timeout + writeTimeoutMargin,
	}
}

// SetRouter sets the HTTP router/handler
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

// Close releases the store connections
func (s *Server) Close() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.mongoClient.Disconnect(ctx); err != nil {
			s.logger.Warn("Failed to disconnect MongoDB", zap.Error(err))
		}
	}
}
