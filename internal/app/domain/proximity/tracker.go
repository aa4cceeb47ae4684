package proximity

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/loci-explore/internal/app/models"
)

// AlertTTL is how long an alert stays active before it is dismissed automatically.
const AlertTTL = 5 * time.Second

// AlertTracker emits edge-triggered proximity alerts for one tracking session.
// A landmark alerts once when the position enters the alert radius and is
// re-armed only after the position leaves it again.
type AlertTracker struct {
	mu      sync.Mutex
	alerted map[string]struct{}
	active  []models.Alert
	ttl     time.Duration
	newID   func() string
}

func NewAlertTracker() *AlertTracker {
	return NewAlertTrackerWithTTL(AlertTTL)
}

func NewAlertTrackerWithTTL(ttl time.Duration) *AlertTracker {
	return &AlertTracker{
		alerted: make(map[string]struct{}),
		ttl:     ttl,
		newID:   uuid.NewString,
	}
}

// AlertChanges lists the alerts raised and cleared by one observation.
type AlertChanges struct {
	Raised  []models.Alert
	Cleared []models.Alert
}

// Observe updates the alerted set from an evaluation. Leaving the alert radius
// re-arms the landmark and clears its active alert.
func (t *AlertTracker) Observe(e Evaluation, now time.Time) AlertChanges {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked(now)

	var changes AlertChanges
	for _, c := range e.Landmarks {
		id := c.Landmark.ID
		_, already := t.alerted[id]
		switch {
		case c.InAlert && !already:
			a := models.Alert{
				ID:         t.newID(),
				LandmarkID: id,
				Message:    AlertMessage(c.Landmark.Name, c.Distance),
				CreatedAt:  now,
				ExpiresAt:  now.Add(t.ttl),
			}
			t.alerted[id] = struct{}{}
			// newest first, as the explore view lists them
			t.active = append([]models.Alert{a}, t.active...)
			changes.Raised = append(changes.Raised, a)
		case !c.InAlert && already:
			delete(t.alerted, id)
			changes.Cleared = append(changes.Cleared, t.removeLandmarkLocked(id)...)
		}
	}
	return changes
}

// Dismiss removes an active alert. It reports whether the alert was active.
// The landmark stays alerted until the position leaves the alert radius.
func (t *AlertTracker) Dismiss(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, a := range t.active {
		if a.ID == id {
			t.active = append(t.active[:i], t.active[i+1:]...)
			return true
		}
	}
	return false
}

// Active returns the alerts that have not expired, newest first.
func (t *AlertTracker) Active(now time.Time) []models.Alert {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked(now)
	out := make([]models.Alert, len(t.active))
	copy(out, t.active)
	return out
}

// Expire removes and returns the alerts whose TTL has elapsed at now.
func (t *AlertTracker) Expire(now time.Time) []models.Alert {
	t.mu.Lock()
	defer t.mu.Unlock()

	var expired []models.Alert
	kept := t.active[:0]
	for _, a := range t.active {
		if a.Expired(now) {
			expired = append(expired, a)
			continue
		}
		kept = append(kept, a)
	}
	t.active = kept
	return expired
}

// NextExpiry returns the earliest expiry among active alerts.
func (t *AlertTracker) NextExpiry() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var next time.Time
	for _, a := range t.active {
		if next.IsZero() || a.ExpiresAt.Before(next) {
			next = a.ExpiresAt
		}
	}
	return next, !next.IsZero()
}

// Alerted reports whether the landmark is currently marked as alerted.
func (t *AlertTracker) Alerted(landmarkID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.alerted[landmarkID]
	return ok
}

// Reset forgets every alert and re-arms every landmark.
func (t *AlertTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alerted = make(map[string]struct{})
	t.active = nil
}

func (t *AlertTracker) removeLandmarkLocked(landmarkID string) []models.Alert {
	var removed []models.Alert
	kept := t.active[:0]
	for _, a := range t.active {
		if a.LandmarkID == landmarkID {
			removed = append(removed, a)
			continue
		}
		kept = append(kept, a)
	}
	t.active = kept
	return removed
}

func (t *AlertTracker) pruneLocked(now time.Time) {
	kept := t.active[:0]
	for _, a := range t.active {
		if !a.Expired(now) {
			kept = append(kept, a)
		}
	}
	t.active = kept
}

// AlertMessage formats the proximity notification text.
func AlertMessage(name string, distance float64) string {
	return fmt.Sprintf("You are within 1km of \"%s\"! (%.0fm away)", name, distance)
}
