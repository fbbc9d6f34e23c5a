package models

import (
	"errors"
	"fmt"
)

// User is the person recommendations are computed for. Preferences are
// explicit category interests; AttendedEvents is the ordered attendance history.
type User struct {
	ID             string     `json:"id" validate:"required"`
	Name           string     `json:"name,omitempty"`
	Location       Coordinate `json:"location"`
	Preferences    []string   `json:"preferences" validate:"unique,dive,required"`
	AttendedEvents []string   `json:"attendedEvents" validate:"dive,required"`
}

// Validate checks that all user fields are valid.
func (u *User) Validate() error {
	if u.ID == "" {
		return errors.New("user ID must not be empty")
	}
	if err := u.Location.Validate(); err != nil {
		return fmt.Errorf("user %s: %w", u.ID, err)
	}
	if err := validateStruct(u); err != nil {
		return fmt.Errorf("user %s: %w", u.ID, err)
	}
	return nil
}
