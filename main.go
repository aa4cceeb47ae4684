package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-explore/internal/pkg/config"
	"github.com/FACorreiaa/loci-explore/internal/pkg/logger"
	"github.com/FACorreiaa/loci-explore/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zl, err := logger.New(logger.ParseLevel(cfg.LogLevel), cfg.LogFormat,
		zap.String("service", cfg.Observability.ServiceName))
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := server.InitObservability(cfg.Observability, zl)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			zl.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	srv, err := server.New(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer srv.Close()

	router := server.SetupRouter(cfg, srv.Dependencies(), zl)
	srv.SetRouter(router)

	// separate port, never exposed publicly
	server.StartPprofServer(cfg.Observability.PprofAddr, zl)

	httpServer := srv.HTTPServer()

	done := make(chan struct{})
	go server.GracefulShutdown(ctx, httpServer, zl, done)

	zl.Info("Server starting", zap.String("port", cfg.ServerPort), zap.String("store", cfg.Repositories.Driver))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Error("Server error", zap.Error(err))
		stop()
		<-done
		return err
	}

	<-done
	zl.Info("Graceful shutdown complete")
	return nil
}
