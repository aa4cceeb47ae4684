package models

import "github.com/FACorreiaa/loci-explore/internal/pkg/geo"

// Landmark is a named, fixed-location point of interest shown on the map.
type Landmark struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Coordinates geo.Coordinates `json:"coordinates"`
	Category    string          `json:"category"`
}

// LandmarkMarker is a Landmark decorated for map display.
type LandmarkMarker struct {
	Landmark
	Label string `json:"label"`
	Color string `json:"color"`
}

// NearbyPOI is a landmark relative to the current position.
type NearbyPOI struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Label         string          `json:"label"`
	Color         string          `json:"color"`
	Coordinates   geo.Coordinates `json:"coordinates"`
	Distance      float64         `json:"distance"`
	DirectionsURL string          `json:"directionsUrl"`
}

// NearbyResponse is the payload of a stateless nearby lookup.
type NearbyResponse struct {
	Position  geo.Coordinates `json:"position"`
	Nearby    []NearbyPOI     `json:"nearby"`
	VeryClose []NearbyPOI     `json:"veryClose"`
}
