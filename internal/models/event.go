package models

import (
	"errors"
	"fmt"
	"math"
)

// Coordinate is a point on the Earth's surface in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// Valid reports whether the coordinate lies within latitude [-90,90] and
// longitude [-180,180]. NaN components are never valid.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Validate checks the coordinate ranges.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return errors.New("coordinate must not be NaN")
	}
	if !c.Valid() {
		return fmt.Errorf("coordinate (%f, %f) out of range", c.Latitude, c.Longitude)
	}
	return nil
}

// Event is a recommendable event. Events are treated as immutable for the
// duration of a recommendation request.
type Event struct {
	ID         string     `json:"id" validate:"required"`
	Title      string     `json:"title,omitempty"`
	Location   Coordinate `json:"location"`
	Categories []string   `json:"categories" validate:"unique,dive,required"`
	Popularity float64    `json:"popularity" validate:"gte=0,lte=1"`
}

// Validate checks that all event fields are valid.
func (e *Event) Validate() error {
	if e.ID == "" {
		return errors.New("event ID must not be empty")
	}
	if err := e.Location.Validate(); err != nil {
		return fmt.Errorf("event %s: %w", e.ID, err)
	}
	if math.IsNaN(e.Popularity) {
		return fmt.Errorf("event %s: popularity must not be NaN", e.ID)
	}
	if err := validateStruct(e); err != nil {
		return fmt.Errorf("event %s: %w", e.ID, err)
	}
	return nil
}
