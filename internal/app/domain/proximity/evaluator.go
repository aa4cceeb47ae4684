package proximity

import (
	"sort"

	"github.com/FACorreiaa/loci-explore/internal/app/domain/landmarks"
	"github.com/FACorreiaa/loci-explore/internal/app/models"
	"github.com/FACorreiaa/loci-explore/internal/pkg/geo"
)

const (
	// DisplayRadius bounds the landmarks listed as nearby.
	DisplayRadius = 5000.0
	// AlertRadius is the proximity notification threshold.
	AlertRadius = 1000.0
	// VeryCloseRadius is the "you are here" threshold; it is exclusive.
	VeryCloseRadius = 50.0
)

// Classification is a landmark's distance from a position and the radii it falls in.
type Classification struct {
	Landmark  models.Landmark
	Distance  float64
	InDisplay bool
	InAlert   bool
	VeryClose bool
}

// Evaluation is the result of classifying every landmark against one position.
type Evaluation struct {
	Position geo.Coordinates
	// Landmarks keeps the order of the input set.
	Landmarks []Classification
}

// Evaluate classifies every landmark against the position.
func Evaluate(position geo.Coordinates, set []models.Landmark) Evaluation {
	out := Evaluation{
		Position:  position,
		Landmarks: make([]Classification, 0, len(set)),
	}
	for _, l := range set {
		out.Landmarks = append(out.Landmarks, classify(l, geo.Distance(position, l.Coordinates)))
	}
	return out
}

func classify(l models.Landmark, d float64) Classification {
	return Classification{
		Landmark:  l,
		Distance:  d,
		InDisplay: d <= DisplayRadius,
		InAlert:   d <= AlertRadius,
		VeryClose: d < VeryCloseRadius,
	}
}

// Nearby returns the landmarks within the display radius, closest first.
func (e Evaluation) Nearby() []Classification {
	return e.filter(func(c Classification) bool { return c.InDisplay })
}

// VeryClose returns the landmarks within the very-close radius, closest first.
func (e Evaluation) VeryClose() []Classification {
	return e.filter(func(c Classification) bool { return c.VeryClose })
}

func (e Evaluation) filter(keep func(Classification) bool) []Classification {
	out := make([]Classification, 0, len(e.Landmarks))
	for _, c := range e.Landmarks {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// ToNearbyPOIs decorates classifications for display relative to origin.
func ToNearbyPOIs(origin geo.Coordinates, items []Classification) []models.NearbyPOI {
	out := make([]models.NearbyPOI, 0, len(items))
	for _, c := range items {
		out = append(out, models.NearbyPOI{
			ID:            c.Landmark.ID,
			Name:          c.Landmark.Name,
			Category:      c.Landmark.Category,
			Label:         landmarks.CategoryLabel(c.Landmark.Category),
			Color:         landmarks.MarkerColor(c.Landmark.Category),
			Coordinates:   c.Landmark.Coordinates,
			Distance:      c.Distance,
			DirectionsURL: geo.DirectionsURL(origin, c.Landmark.Coordinates),
		})
	}
	return out
}

// NearbyResponse is a convenience wrapper producing the stateless nearby payload.
func NearbyResponse(position geo.Coordinates, set []models.Landmark) models.NearbyResponse {
	e := Evaluate(position, set)
	return models.NearbyResponse{
		Position:  position,
		Nearby:    ToNearbyPOIs(position, e.Nearby()),
		VeryClose: ToNearbyPOIs(position, e.VeryClose()),
	}
}
