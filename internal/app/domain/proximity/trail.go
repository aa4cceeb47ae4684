package proximity

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/loci-explore/internal/app/models"
	"github.com/FACorreiaa/loci-explore/internal/pkg/geo"
)

const (
	// SignificantDistance is the minimum movement recorded on the trail.
	SignificantDistance = 20.0
	// MaxTrailPoints caps the trail; the oldest points are dropped first.
	MaxTrailPoints = 100
)

// Trail records significant position changes during a tracking session.
type Trail struct {
	mu     sync.Mutex
	points []models.TrailPoint
	limit  int
}

func NewTrail() *Trail {
	return &Trail{limit: MaxTrailPoints}
}

// Record appends the position when it is the first one or lies more than
// SignificantDistance from the last recorded point.
func (t *Trail) Record(c geo.Coordinates, now time.Time) (models.TrailPoint, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.points); n > 0 && geo.Distance(t.points[n-1].Coordinates, c) <= SignificantDistance {
		return models.TrailPoint{}, false
	}

	p := models.TrailPoint{
		ID:          uuid.NewString(),
		Name:        geo.Format(c),
		Coordinates: c,
		Timestamp:   now,
	}
	t.points = append(t.points, p)
	if len(t.points) > t.limit {
		t.points = t.points[len(t.points)-t.limit:]
	}
	return p, true
}

// Points returns the recorded trail, oldest first.
func (t *Trail) Points() []models.TrailPoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.TrailPoint, len(t.points))
	copy(out, t.points)
	return out
}

func (t *Trail) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.points = nil
}
