package recommend

import (
	"github.com/rewired-gh/eventoracle/internal/geo"
	"github.com/rewired-gh/eventoracle/internal/models"
)

// DefaultNearbyRadiusKm is the neighbourhood used when looking for users
// with overlapping tastes.
const DefaultNearbyRadiusKm = 57.0

// NearbyCandidates returns the events attended by other users within
// radiusKm of user whose explicit preferences overlap the categories in
// profile. Matching on the derived profile rather than the raw preference
// list lets a user without explicit preferences still find neighbours
// through its attendance history.
// The result is de-duplicated and keeps first-seen order.
func NearbyCandidates(user *models.User, profile Profile, users []models.User, radiusKm float64) []string {
	if len(profile) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var ids []string

	for i := range users {
		neighbour := &users[i]
		if neighbour.ID == user.ID {
			continue
		}
		if !geo.Within(user.Location, neighbour.Location, radiusKm) {
			continue
		}
		if !sharesCategory(profile, neighbour.Preferences) {
			continue
		}
		for _, id := range neighbour.AttendedEvents {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func sharesCategory(profile Profile, prefs []string) bool {
	for _, p := range prefs {
		if profile[p] > 0 {
			return true
		}
	}
	return false
}
