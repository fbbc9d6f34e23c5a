package recommend

import (
	"sort"

	"github.com/rewired-gh/eventoracle/internal/models"
)

// CandidateSet holds the IDs of events reachable through collaborative
// signals (similarity or nearby users), never including attended events.
type CandidateSet map[string]struct{}

// Has reports whether id is a candidate.
func (c CandidateSet) Has(id string) bool {
	_, ok := c[id]
	return ok
}

// IDs returns the candidate IDs in sorted order.
func (c CandidateSet) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Merge adds ids to the set, skipping any that appear in attended.
func (c CandidateSet) Merge(ids []string, attended map[string]bool) {
	for _, id := range ids {
		if attended[id] {
			continue
		}
		c[id] = struct{}{}
	}
}

// ResolveCandidates expands the user's attended events through the
// similarity index. Attended IDs without an index entry contribute nothing.
func ResolveCandidates(user *models.User, similarity models.SimilarityIndex) CandidateSet {
	attended := attendedSet(user)
	set := make(CandidateSet)
	for _, id := range user.AttendedEvents {
		set.Merge(similarity.Similar(id), attended)
	}
	return set
}

func attendedSet(user *models.User) map[string]bool {
	attended := make(map[string]bool, len(user.AttendedEvents))
	for _, id := range user.AttendedEvents {
		attended[id] = true
	}
	return attended
}
