package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/FACorreiaa/loci-explore/internal/app/domain/chat"
	"github.com/FACorreiaa/loci-explore/internal/app/middleware"
	"github.com/FACorreiaa/loci-explore/internal/pkg/config"
	"github.com/FACorreiaa/loci-explore/internal/routes"
)

const sessionName = "loci_session"

// SetupRouter configures and returns the Gin router with all middleware and routes
func SetupRouter(cfg *config.Config, deps routes.Dependencies, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.OTELGinMiddleware(cfg.Observability.ServiceName))
	r.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		UTC:        true,
		TimeFormat: time.RFC3339,
		Context:    zapContextFunc(),
	}))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(middleware.HTTPMetricsMiddleware())
	r.Use(middleware.CORSMiddleware(middleware.AllowedOrigins(cfg.CORSAllowedOrigins)))
	r.Use(middleware.SecurityMiddleware())

	if cfg.UsesDevSessionSecret() {
		logger.Warn("SESSION_SECRET is not set; session cookies are signed with the public development key")
	}
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(chat.TranscriptIdleTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	routes.Setup(r, deps, logger)

	return r
}

// zapContextFunc adds request and trace ids to the access log
func zapContextFunc() ginzap.Fn {
	return func(c *gin.Context) []zapcore.Field {
		fields := []zapcore.Field{}

		if requestID := c.Writer.Header().Get(middleware.RequestIDHeader); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}

		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			fields = append(fields,
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.String("span_id", span.SpanContext().SpanID().String()),
			)
		}

		return fields
	}
}
