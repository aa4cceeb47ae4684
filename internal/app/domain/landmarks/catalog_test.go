package landmarks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-explore/internal/app/models"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, "monument-1", all[0].ID)
	assert.Equal(t, 13.014281, all[0].Coordinates.Latitude)

	l, ok := c.ByName("Monument Two")
	require.True(t, ok)
	assert.Equal(t, "museum", l.Category)

	_, ok = c.ByName("monument two")
	assert.False(t, ok, "names match exactly")

	_, ok = c.ByID("monument-3")
	assert.False(t, ok)
}

func TestCatalogIsImmutable(t *testing.T) {
	c := New([]models.Landmark{{ID: "a", Name: "A"}})
	all := c.All()
	all[0].Name = "changed"

	l, ok := c.ByID("a")
	require.True(t, ok)
	assert.Equal(t, "A", l.Name)
}

func TestMarkers(t *testing.T) {
	tests := []struct {
		category string
		color    string
		label    string
	}{
		{"landmark", "#0ea5e9", "Landmark"},
		{"building", "#8b5cf6", "Building"},
		{"museum", "#f59e0b", "Museum"},
		{"monument", "#ef4444", "Monument"},
		{"tent-tree", "#10b981", "Tent Tree"},
		{"castle", DefaultMarkerColor, "Castle"},
	}
	for _, tc := range tests {
		t.Run(tc.category, func(t *testing.T) {
			assert.Equal(t, tc.color, MarkerColor(tc.category))
			assert.Equal(t, tc.label, CategoryLabel(tc.category))
		})
	}

	markers := Default().Markers()
	require.Len(t, markers, 2)
	assert.Equal(t, "#f59e0b", markers[1].Color)
}
