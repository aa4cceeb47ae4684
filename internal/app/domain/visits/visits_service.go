package visits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-explore/internal/app/models"
	"github.com/FACorreiaa/loci-explore/internal/app/observability/metrics"
)

// MaxRecentVisits bounds the visit history returned to clients.
const MaxRecentVisits = 20

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	RecordVisit(ctx context.Context, monumentName string) (models.VisitResult, error)
	RecentVisits(ctx context.Context) ([]models.VisitRecord, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		now:    time.Now,
	}
}

// RecordVisit logs the first visit to a monument. Repeat visits leave the
// stored record untouched and report IsNewVisit=false.
func (s *ServiceImpl) RecordVisit(ctx context.Context, monumentName string) (models.VisitResult, error) {
	name := strings.TrimSpace(monumentName)
	ctx, span := otel.Tracer("VisitsService").Start(ctx, "RecordVisit", trace.WithAttributes(
		attribute.String("monument.name", name),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "RecordVisit"), zap.String("monument", name))
	if name == "" {
		span.SetStatus(codes.Error, "Missing monument name")
		return models.VisitResult{}, fmt.Errorf("monument name is required: %w", models.ErrBadRequest)
	}
	l.Debug("Recording monument visit")

	res, err := s.repo.RecordVisit(ctx, name, s.now().UTC())
	if err != nil {
		l.Error("Failed to record visit", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to record visit")
		metrics.Get().VisitsRecordedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
		return models.VisitResult{}, fmt.Errorf("error recording visit: %w", err)
	}

	outcome := "repeat"
	if res.IsNewVisit {
		outcome = "new"
	}
	metrics.Get().VisitsRecordedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	span.SetAttributes(attribute.Bool("visit.new", res.IsNewVisit))

	l.Info("Monument visit processed", zap.Bool("isNewVisit", res.IsNewVisit))
	span.SetStatus(codes.Ok, "Visit processed")
	return res, nil
}

func (s *ServiceImpl) RecentVisits(ctx context.Context) ([]models.VisitRecord, error) {
	ctx, span := otel.Tracer("VisitsService").Start(ctx, "RecentVisits")
	defer span.End()

	l := s.logger.With(zap.String("method", "RecentVisits"))
	l.Debug("Fetching recent visits")

	visits, err := s.repo.RecentVisits(ctx, MaxRecentVisits)
	if err != nil {
		l.Error("Failed to fetch visits", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch visits")
		return nil, fmt.Errorf("error fetching visits: %w", err)
	}
	if visits == nil {
		visits = []models.VisitRecord{}
	}
	if len(visits) > MaxRecentVisits {
		visits = visits[:MaxRecentVisits]
	}

	span.SetStatus(codes.Ok, "Visits fetched")
	return visits, nil
}
