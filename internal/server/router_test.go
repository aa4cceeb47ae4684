package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/FACorreiaa/loci-explore/internal/app/domain/explore"
	"github.com/FACorreiaa/loci-explore/internal/app/middleware"
	"github.com/FACorreiaa/loci-explore/internal/app/models"
	"github.com/FACorreiaa/loci-explore/internal/pkg/config"
	"github.com/FACorreiaa/loci-explore/internal/routes"
)

type emptyVisits struct{}

func (emptyVisits) RecordVisit(context.Context, string, time.Time) (models.VisitResult, error) {
	return models.VisitResult{IsNewVisit: true, InsertedID: "1"}, nil
}

func (emptyVisits) RecentVisits(context.Context, int) ([]models.VisitRecord, error) {
	return nil, nil
}

type noDescriptions struct{}

func (noDescriptions) GetDescription(context.Context, string) (string, error) {
	return "", models.ErrNotFound
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func testConfig() *config.Config {
	return &config.Config{
		Chat:          config.ChatConfig{BackendURL: "http://127.0.0.1:1", Timeout: time.Second},
		Observability: config.ObservabilityConfig{ServiceName: "loci-explore-test"},
		ServerPort:    "0",
		SessionSecret: "test-secret",

		CORSAllowedOrigins: []string{"http://localhost:5173"},
	}
}

func TestSetupRouter(t *testing.T) {
	cfg := testConfig()
	r := SetupRouter(cfg, routes.Dependencies{
		Visits:       emptyVisits{},
		Descriptions: noDescriptions{},
		Store:        downPinger{},
		StoreDriver:  config.StoreDriverPostgres,
		Chat:         cfg.Chat,
		Explore:      explore.DefaultConfig(),
	}, zap.NewNop())

	t.Run("status endpoint reports a down store without failing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/db-status", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"connected":false}`, w.Body.String())
	})

	t.Run("middleware headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/landmarks", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin gets no cors headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/landmarks", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestSetupRouter_WarnsOnDevSessionSecret(t *testing.T) {
	for _, tc := range []struct {
		secret string
		warned int
	}{
		{config.DevSessionSecret, 1},
		{"a-real-secret", 0},
	} {
		core, logs := observer.New(zap.WarnLevel)
		cfg := testConfig()
		cfg.SessionSecret = tc.secret
		SetupRouter(cfg, routes.Dependencies{Chat: cfg.Chat, Explore: explore.DefaultConfig()}, zap.New(core))
		assert.Equal(t, tc.warned, logs.FilterMessageSnippet("SESSION_SECRET").Len(), tc.secret)
	}
}

func TestHTTPServerOutlivesChatTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.Chat.Timeout = time.Minute
	s := &Server{cfg: cfg, logger: zap.NewNop()}
	srv := s.HTTPServer()
	assert.Equal(t, ":0", srv.Addr)
	assert.Greater(t, srv.WriteTimeout, cfg.Chat.Timeout)
}

func TestGracefulShutdown(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0"}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go GracefulShutdown(ctx, srv, zap.NewNop(), done)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}
}
