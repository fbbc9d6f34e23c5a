package models

import (
	"math"
	"testing"
)

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantErr bool
	}{
		{
			name: "valid event",
			event: Event{
				ID:         "event-1",
				Title:      "Jazz night",
				Location:   Coordinate{Latitude: 40.7128, Longitude: -74.0060},
				Categories: []string{"music", "jazz"},
				Popularity: 0.8,
			},
			wantErr: false,
		},
		{
			name: "empty ID",
			event: Event{
				Location:   Coordinate{Latitude: 40.7128, Longitude: -74.0060},
				Popularity: 0.5,
			},
			wantErr: true,
		},
		{
			name: "latitude out of range",
			event: Event{
				ID:         "event-1",
				Location:   Coordinate{Latitude: 91, Longitude: 0},
				Popularity: 0.5,
			},
			wantErr: true,
		},
		{
			name: "longitude out of range",
			event: Event{
				ID:         "event-1",
				Location:   Coordinate{Latitude: 0, Longitude: -181},
				Popularity: 0.5,
			},
			wantErr: true,
		},
		{
			name: "negative popularity",
			event: Event{
				ID:         "event-1",
				Location:   Coordinate{Latitude: 0, Longitude: 0},
				Popularity: -0.1,
			},
			wantErr: true,
		},
		{
			name: "NaN popularity",
			event: Event{
				ID:         "event-1",
				Location:   Coordinate{Latitude: 0, Longitude: 0},
				Popularity: math.NaN(),
			},
			wantErr: true,
		},
		{
			name: "empty category",
			event: Event{
				ID:         "event-1",
				Location:   Coordinate{Latitude: 0, Longitude: 0},
				Categories: []string{"music", ""},
				Popularity: 0.5,
			},
			wantErr: true,
		},
		{
			name: "duplicate category",
			event: Event{
				ID:         "event-1",
				Location:   Coordinate{Latitude: 0, Longitude: 0},
				Categories: []string{"music", "music"},
				Popularity: 0.5,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Event.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserValidate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{
			name: "valid user",
			user: User{
				ID:             "user-1",
				Location:       Coordinate{Latitude: 51.5, Longitude: -0.12},
				Preferences:    []string{"music"},
				AttendedEvents: []string{"event-1"},
			},
			wantErr: false,
		},
		{
			name:    "valid user without history",
			user:    User{ID: "user-1"},
			wantErr: false,
		},
		{
			name:    "empty ID",
			user:    User{Location: Coordinate{Latitude: 1, Longitude: 1}},
			wantErr: true,
		},
		{
			name: "NaN location",
			user: User{
				ID:       "user-1",
				Location: Coordinate{Latitude: math.NaN(), Longitude: 0},
			},
			wantErr: true,
		},
		{
			name: "duplicate preference",
			user: User{
				ID:          "user-1",
				Preferences: []string{"art", "music", "art"},
			},
			wantErr: true,
		},
		{
			name: "blank attended ID",
			user: User{
				ID:             "user-1",
				AttendedEvents: []string{""},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("User.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCatalogValidate(t *testing.T) {
	event := Event{ID: "event-1", Location: Coordinate{Latitude: 1, Longitude: 1}, Popularity: 0.3}
	user := User{ID: "user-1", Location: Coordinate{Latitude: 1, Longitude: 1}}

	t.Run("valid catalog", func(t *testing.T) {
		c := Catalog{
			Events:     []Event{event},
			Users:      []User{user},
			Similarity: SimilarityIndex{"event-1": {"missing-event"}},
		}
		if err := c.Validate(); err != nil {
			t.Errorf("Catalog.Validate() unexpected error: %v", err)
		}
	})

	t.Run("duplicate event", func(t *testing.T) {
		c := Catalog{Events: []Event{event, event}}
		if err := c.Validate(); err == nil {
			t.Error("expected duplicate event error")
		}
	})

	t.Run("duplicate user", func(t *testing.T) {
		c := Catalog{Users: []User{user, user}}
		if err := c.Validate(); err == nil {
			t.Error("expected duplicate user error")
		}
	})

	t.Run("repeated category", func(t *testing.T) {
		tagged := event
		tagged.Categories = []string{"music", "music"}
		c := Catalog{Events: []Event{tagged}}
		if err := c.Validate(); err == nil {
			t.Error("expected repeated category to be rejected")
		}
	})
}

func TestSimilarityIndexSimilar(t *testing.T) {
	var empty SimilarityIndex
	if got := empty.Similar("x"); got != nil {
		t.Errorf("nil index returned %v", got)
	}

	idx := SimilarityIndex{"a": {"b", "c"}}
	if got := idx.Similar("a"); len(got) != 2 {
		t.Errorf("expected 2 similar events, got %v", got)
	}
	if got := idx.Similar("z"); got != nil {
		t.Errorf("expected nil for missing key, got %v", got)
	}
}
