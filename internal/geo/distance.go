// Package geo computes great-circle distances on a spherical Earth.
package geo

import (
	"math"

	"github.com/rewired-gh/eventoracle/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by the Haversine model.
const EarthRadiusKm = 6371.0

const degToRad = math.Pi / 180

// Distance returns the Haversine distance in kilometres between a and b.
// It returns NaN when either coordinate is outside the valid latitude or
// longitude range; callers must treat a NaN distance as "unreachable".
func Distance(a, b models.Coordinate) float64 {
	if !a.Valid() || !b.Valid() {
		return math.NaN()
	}

	lat1 := a.Latitude * degToRad
	lat2 := b.Latitude * degToRad
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * degToRad

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	// Rounding can push h a hair above 1 for antipodal points.
	h = math.Min(1, h)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// Within reports whether b lies within radiusKm of a. Unreachable pairs
// (NaN distance) are never within any radius.
func Within(a, b models.Coordinate, radiusKm float64) bool {
	d := Distance(a, b)
	return !math.IsNaN(d) && d <= radiusKm
}
