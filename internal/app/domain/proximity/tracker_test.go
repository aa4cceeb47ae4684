package proximity

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-explore/internal/app/models"
	"github.com/FACorreiaa/loci-explore/internal/pkg/geo"
)

func newTestTracker() *AlertTracker {
	tr := NewAlertTracker()
	n := 0
	tr.newID = func() string {
		n++
		return fmt.Sprintf("alert-%d", n)
	}
	return tr
}

func TestAlertTracker_EdgeTriggered(t *testing.T) {
	landmark := models.Landmark{ID: "monument-1", Name: "Monument One", Coordinates: geo.Coordinates{Latitude: 10, Longitude: 10}}
	set := []models.Landmark{landmark}
	inside := offsetNorth(landmark.Coordinates, 400)
	outside := offsetNorth(landmark.Coordinates, 1500)

	tr := newTestTracker()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	changes := tr.Observe(Evaluate(inside, set), now)
	require.Len(t, changes.Raised, 1)
	assert.Equal(t, "monument-1", changes.Raised[0].LandmarkID)
	assert.Equal(t, `You are within 1km of "Monument One"! (400m away)`, changes.Raised[0].Message)
	assert.Equal(t, now.Add(AlertTTL), changes.Raised[0].ExpiresAt)

	// stationary inside the radius: no more alerts, even after the first expires
	for i := 1; i <= 5; i++ {
		changes = tr.Observe(Evaluate(inside, set), now.Add(time.Duration(i)*10*time.Second))
		assert.Empty(t, changes.Raised)
	}
	assert.True(t, tr.Alerted("monument-1"))

	changes = tr.Observe(Evaluate(outside, set), now.Add(time.Minute))
	assert.Empty(t, changes.Raised)
	assert.False(t, tr.Alerted("monument-1"))

	changes = tr.Observe(Evaluate(inside, set), now.Add(2*time.Minute))
	require.Len(t, changes.Raised, 1)
	assert.Equal(t, "alert-2", changes.Raised[0].ID)
}

func TestAlertTracker_LeavingClearsActiveAlert(t *testing.T) {
	landmark := models.Landmark{ID: "a", Name: "A", Coordinates: geo.Coordinates{Latitude: 10, Longitude: 10}}
	set := []models.Landmark{landmark}
	tr := newTestTracker()
	now := time.Now()

	tr.Observe(Evaluate(offsetNorth(landmark.Coordinates, 100), set), now)
	require.Len(t, tr.Active(now), 1)

	changes := tr.Observe(Evaluate(offsetNorth(landmark.Coordinates, 2000), set), now.Add(time.Second))
	require.Len(t, changes.Cleared, 1)
	assert.Equal(t, "alert-1", changes.Cleared[0].ID)
	assert.Empty(t, tr.Active(now.Add(time.Second)))

	// quick re-entry never leaves two active alerts for the same landmark
	tr.Observe(Evaluate(offsetNorth(landmark.Coordinates, 100), set), now.Add(2*time.Second))
	active := tr.Active(now.Add(2 * time.Second))
	require.Len(t, active, 1)
	assert.Equal(t, "alert-2", active[0].ID)
}

func TestAlertTracker_ExpiryAndDismiss(t *testing.T) {
	set := []models.Landmark{
		{ID: "a", Name: "A", Coordinates: geo.Coordinates{Latitude: 10, Longitude: 10}},
		{ID: "b", Name: "B", Coordinates: geo.Coordinates{Latitude: 10.001, Longitude: 10}},
	}
	tr := newTestTracker()
	now := time.Now()

	changes := tr.Observe(Evaluate(geo.Coordinates{Latitude: 10.0005, Longitude: 10}, set), now)
	require.Len(t, changes.Raised, 2)

	active := tr.Active(now)
	require.Len(t, active, 2)
	assert.Equal(t, "alert-2", active[0].ID, "newest first")

	assert.True(t, tr.Dismiss("alert-1"))
	assert.False(t, tr.Dismiss("alert-1"))
	assert.Len(t, tr.Active(now), 1)

	assert.Len(t, tr.Active(now.Add(AlertTTL-time.Millisecond)), 1)
	assert.Empty(t, tr.Active(now.Add(AlertTTL)))

	tr.Reset()
	assert.False(t, tr.Alerted("a"))
}

func TestAlertTracker_ExpireReportsRemovedAlerts(t *testing.T) {
	a := models.Landmark{ID: "a", Name: "A", Coordinates: geo.Coordinates{Latitude: 10, Longitude: 10}}
	b := models.Landmark{ID: "b", Name: "B", Coordinates: offsetNorth(a.Coordinates, 600)}
	tr := newTestTracker()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	set := []models.Landmark{a, b}

	// 500m south of a: only a is within the alert radius
	require.Len(t, tr.Observe(Evaluate(offsetNorth(a.Coordinates, -500), set), start).Raised, 1)
	// at a: b is 600m away and alerts too, a stays alerted
	require.Len(t, tr.Observe(Evaluate(a.Coordinates, set), start.Add(2*time.Second)).Raised, 1)

	next, ok := tr.NextExpiry()
	require.True(t, ok)
	assert.Equal(t, start.Add(AlertTTL), next)

	expired := tr.Expire(start.Add(AlertTTL))
	require.Len(t, expired, 1)
	assert.Equal(t, "a", expired[0].LandmarkID)
	assert.Len(t, tr.Active(start.Add(AlertTTL)), 1)

	next, ok = tr.NextExpiry()
	require.True(t, ok)
	assert.Equal(t, start.Add(2*time.Second+AlertTTL), next)

	assert.Len(t, tr.Expire(start.Add(time.Minute)), 1)
	_, ok = tr.NextExpiry()
	assert.False(t, ok)
}
