package landmarks

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/loci-explore/internal/app/models"
	"github.com/FACorreiaa/loci-explore/internal/pkg/geo"
)

// DefaultMarkerColor is used for categories without a dedicated color.
const DefaultMarkerColor = "#6366f1"

var markerColors = map[string]string{
	"landmark":  "#0ea5e9",
	"building":  "#8b5cf6",
	"museum":    "#f59e0b",
	"monument":  "#ef4444",
	"tent-tree": "#10b981",
}

var builtin = []models.Landmark{
	{
		ID:          "monument-1",
		Name:        "Monument One",
		Coordinates: geo.Coordinates{Latitude: 13.014281, Longitude: 77.544687},
		Category:    "landmark",
	},
	{
		ID:          "monument-2",
		Name:        "Monument Two",
		Coordinates: geo.Coordinates{Latitude: 13.004252, Longitude: 77.544677},
		Category:    "museum",
	},
}

// Catalog is a fixed set of landmarks. It is never mutated after construction.
type Catalog struct {
	items  []models.Landmark
	byID   map[string]int
	byName map[string]int
}

// New builds a catalog from the given landmarks.
func New(items []models.Landmark) *Catalog {
	c := &Catalog{
		items:  make([]models.Landmark, len(items)),
		byID:   make(map[string]int, len(items)),
		byName: make(map[string]int, len(items)),
	}
	copy(c.items, items)
	for i, l := range c.items {
		c.byID[l.ID] = i
		c.byName[l.Name] = i
	}
	return c
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	return New(builtin)
}

// All returns a copy of every landmark in catalog order.
func (c *Catalog) All() []models.Landmark {
	out := make([]models.Landmark, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) ByID(id string) (models.Landmark, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Landmark{}, false
	}
	return c.items[i], true
}

// ByName matches the display name exactly.
func (c *Catalog) ByName(name string) (models.Landmark, bool) {
	i, ok := c.byName[name]
	if !ok {
		return models.Landmark{}, false
	}
	return c.items[i], true
}

// Markers returns every landmark decorated with its label and marker color.
func (c *Catalog) Markers() []models.LandmarkMarker {
	out := make([]models.LandmarkMarker, 0, len(c.items))
	for _, l := range c.items {
		out = append(out, models.LandmarkMarker{
			Landmark: l,
			Label:    CategoryLabel(l.Category),
			Color:    MarkerColor(l.Category),
		})
	}
	return out
}

// MarkerColor returns the map marker color for a category.
func MarkerColor(category string) string {
	if color, ok := markerColors[category]; ok {
		return color
	}
	return DefaultMarkerColor
}

// CategoryLabel turns a category tag such as "tent-tree" into "Tent Tree".
func CategoryLabel(category string) string {
	if category == "" {
		return ""
	}
	words := strings.FieldsFunc(category, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}
