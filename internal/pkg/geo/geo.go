package geo

import (
	"fmt"
	"math"
	"net/url"
)

// EarthRadiusMeters is the mean Earth radius used by Distance.
const EarthRadiusMeters = 6371e3

// Coordinates is a WGS84 latitude/longitude pair in degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Distance calculates the great-circle distance in meters between two
// coordinates using the Haversine formula.
func Distance(a, b Coordinates) float64 {
	phi1 := toRadians(a.Latitude)
	phi2 := toRadians(b.Latitude)
	dPhi := toRadians(b.Latitude - a.Latitude)
	dLambda := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(dLambda/2)*math.Sin(dLambda/2)

	// rounding can push h marginally past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// Valid checks if latitude and longitude are within range.
// Latitude must be between -90 and 90
// Longitude must be between -180 and 180
func Valid(c Coordinates) bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Format formats coordinates for display as "lat, lng".
func Format(c Coordinates) string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}

// DirectionsURL builds a Google Maps driving directions link between two points.
func DirectionsURL(origin, destination Coordinates) string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("origin", fmt.Sprintf("%f,%f", origin.Latitude, origin.Longitude))
	q.Set("destination", fmt.Sprintf("%f,%f", destination.Latitude, destination.Longitude))
	q.Set("travelmode", "driving")
	return "https://www.google.com/maps/dir/?" + q.Encode()
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
