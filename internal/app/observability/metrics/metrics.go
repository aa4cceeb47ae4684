package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal      metric.Int64Counter
	HTTPRequestDuration    metric.Float64Histogram
	DBQueryDurationSeconds metric.Float64Histogram
	DBQueryErrorsTotal     metric.Int64Counter
	VisitsRecordedTotal    metric.Int64Counter
	AlertsEmittedTotal     metric.Int64Counter
	ChatRequestsTotal      metric.Int64Counter
	TrackingSessions       metric.Int64UpDownCounter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments from the global MeterProvider once.
// Call it after the providers are installed so exports reach Prometheus.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("loci-explore")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		must("http_requests_total", err)

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		must("http_request_duration_seconds", err)

		m.DBQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		must("db_query_duration_seconds", err)

		m.DBQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		must("db_query_errors_total", err)

		m.VisitsRecordedTotal, err = meter.Int64Counter(
			"visits_recorded_total",
			metric.WithDescription("Total number of record-visit calls by outcome"),
			metric.WithUnit("{visit}"),
		)
		must("visits_recorded_total", err)

		m.AlertsEmittedTotal, err = meter.Int64Counter(
			"proximity_alerts_total",
			metric.WithDescription("Total number of proximity alerts raised"),
			metric.WithUnit("{alert}"),
		)
		must("proximity_alerts_total", err)

		m.ChatRequestsTotal, err = meter.Int64Counter(
			"chat_requests_total",
			metric.WithDescription("Total number of chat backend calls by outcome"),
			metric.WithUnit("{request}"),
		)
		must("chat_requests_total", err)

		m.TrackingSessions, err = meter.Int64UpDownCounter(
			"tracking_sessions_active",
			metric.WithDescription("Current number of open tracking sockets"),
			metric.WithUnit("{session}"),
		)
		must("tracking_sessions_active", err)

		appMetrics = m
	})
}

func must(name string, err error) {
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
}

// Get returns the instruments, initializing them against the current global
// MeterProvider if InitAppMetrics has not run yet.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

func RecordDBQuery(ctx context.Context, op string, start time.Time) {
	Get().DBQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("db.operation.name", op)))
}

func RecordDBError(ctx context.Context, op string) {
	Get().DBQueryErrorsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("db.operation.name", op)))
}
