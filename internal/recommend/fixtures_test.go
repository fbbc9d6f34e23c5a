package recommend

import (
	"math"

	"github.com/rewired-gh/eventoracle/internal/geo"
	"github.com/rewired-gh/eventoracle/internal/models"
)

var kmPerDegree = geo.EarthRadiusKm * math.Pi / 180

// north returns the point km kilometres due north of (0,0).
func north(km float64) models.Coordinate {
	return models.Coordinate{Latitude: km / kmPerDegree, Longitude: 0}
}

// south returns the point km kilometres due south of (0,0).
func south(km float64) models.Coordinate {
	return models.Coordinate{Latitude: -km / kmPerDegree, Longitude: 0}
}

func event(id string, loc models.Coordinate, popularity float64, categories ...string) models.Event {
	return models.Event{
		ID:         id,
		Title:      id,
		Location:   loc,
		Categories: categories,
		Popularity: popularity,
	}
}

func ids(events []models.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
