package recommend

import (
	"math"

	"github.com/rewired-gh/eventoracle/internal/geo"
	"github.com/rewired-gh/eventoracle/internal/models"
)

// Profile is a user's implicit interest profile: category -> non-negative
// weight. Explicit preferences seed weight 1 and every attended event adds 1
// to each of its categories.
type Profile map[string]float64

// Points sums the profile weight of every category the event carries.
func (p Profile) Points(e *models.Event) float64 {
	var points float64
	for _, c := range e.Categories {
		points += p[c]
	}
	return points
}

// BuildProfile derives the preference profile for user from its explicit
// preferences and the categories of its attended events. Attended IDs missing
// from events are stale references and are skipped.
//
// The second return value is the largest distance between the user and any
// resolvable attended event, or 0 when there is none.
func BuildProfile(user *models.User, events map[string]*models.Event) (Profile, float64) {
	profile := make(Profile, len(user.Preferences))
	for _, pref := range user.Preferences {
		profile[pref] = 1
	}

	maxDistance := 0.0
	for _, id := range user.AttendedEvents {
		event, ok := events[id]
		if !ok {
			continue
		}
		for _, c := range event.Categories {
			profile[c]++
		}

		d := geo.Distance(user.Location, event.Location)
		if !math.IsNaN(d) && d > maxDistance {
			maxDistance = d
		}
	}

	return profile, maxDistance
}

// indexEvents builds an ID lookup over events. Later duplicates win, which
// never happens for a validated catalog.
func indexEvents(events []models.Event) map[string]*models.Event {
	byID := make(map[string]*models.Event, len(events))
	for i := range events {
		byID[events[i].ID] = &events[i]
	}
	return byID
}
