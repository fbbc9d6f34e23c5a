package recommend

import (
	"sort"

	"github.com/rewired-gh/eventoracle/internal/models"
)

// selectTop orders scored candidates by score descending, breaking ties by
// catalog position, and returns the events of the first limit entries.
func selectTop(scored []ScoredCandidate, limit int) []models.Event {
	ranked := make([]ScoredCandidate, len(scored))
	copy(ranked, scored)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].order < ranked[j].order
	})

	if limit > len(ranked) {
		limit = len(ranked)
	}

	events := make([]models.Event, 0, limit)
	for _, c := range ranked[:limit] {
		events = append(events, *c.Event)
	}
	return events
}
