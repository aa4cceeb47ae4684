package monuments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/loci-explore/internal/app/models"
	"github.com/FACorreiaa/loci-explore/internal/pkg/cache"
)

// DescriptionTTL is how long a fetched description is served from memory.
const DescriptionTTL = 10 * time.Minute

// VisitLister is the part of the visits service the overview needs.
type VisitLister interface {
	RecentVisits(ctx context.Context) ([]models.VisitRecord, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Description(ctx context.Context, monumentName string) (string, error)
	Overview(ctx context.Context, monumentName string) (models.MonumentOverview, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
	visits VisitLister
	cache  *cache.UnifiedCache[string]
}

func NewService(repo Repository, visits VisitLister, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		visits: visits,
		cache:  cache.NewUnifiedCache[string](DescriptionTTL, "monument_descriptions", logger),
	}
}

func (s *ServiceImpl) Description(ctx context.Context, monumentName string) (string, error) {
	name := strings.TrimSpace(monumentName)
	ctx, span := otel.Tracer("MonumentsService").Start(ctx, "Description", trace.WithAttributes(
		attribute.String("monument.name", name),
	))
	defer span.End()

	if name == "" {
		span.SetStatus(codes.Error, "Missing monument name")
		return "", fmt.Errorf("monument name is required: %w", models.ErrBadRequest)
	}

	if desc, ok := s.cache.Get(name); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		span.SetStatus(codes.Ok, "Description served from cache")
		return desc, nil
	}

	l := s.logger.With(zap.String("method", "Description"), zap.String("monument", name))
	l.Debug("Fetching monument description")

	desc, err := s.repo.GetDescription(ctx, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch description")
		return "", fmt.Errorf("error fetching description: %w", err)
	}

	s.cache.Set(name, desc)
	span.SetStatus(codes.Ok, "Description fetched")
	return desc, nil
}

// Overview loads the description and the visit log concurrently. Either part
// may fail on its own; the failure is reported in the matching error field.
func (s *ServiceImpl) Overview(ctx context.Context, monumentName string) (models.MonumentOverview, error) {
	name := strings.TrimSpace(monumentName)
	ctx, span := otel.Tracer("MonumentsService").Start(ctx, "Overview", trace.WithAttributes(
		attribute.String("monument.name", name),
	))
	defer span.End()

	if name == "" {
		return models.MonumentOverview{}, fmt.Errorf("monument name is required: %w", models.ErrBadRequest)
	}

	l := s.logger.With(zap.String("method", "Overview"), zap.String("monument", name))
	out := models.MonumentOverview{MonumentName: name, Visits: []models.VisitRecord{}}

	var g errgroup.Group
	g.Go(func() error {
		desc, err := s.Description(ctx, name)
		if err != nil {
			l.Warn("Description unavailable", zap.Error(err))
			out.DescriptionError = descriptionErrorMessage(err)
			return nil
		}
		out.Description = desc
		return nil
	})
	g.Go(func() error {
		visits, err := s.visits.RecentVisits(ctx)
		if err != nil {
			l.Warn("Visit history unavailable", zap.Error(err))
			out.VisitsError = "Failed to fetch visited monuments"
			return nil
		}
		out.Visits = visits
		return nil
	})
	// both parts degrade into their error fields, so Wait has nothing to report
	_ = g.Wait()

	span.SetStatus(codes.Ok, "Overview assembled")
	return out, nil
}
