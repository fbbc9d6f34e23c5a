package models

import (
	"fmt"
)

// SimilarityIndex maps an event ID to the IDs of events considered similar to
// it. The relation is asymmetric and a missing key means "no similar events".
type SimilarityIndex map[string][]string

// Similar returns the events similar to id, or nil when id is not indexed.
func (s SimilarityIndex) Similar(id string) []string {
	if s == nil {
		return nil
	}
	return s[id]
}

// Catalog bundles everything a recommendation run reads: the event catalog,
// the user directory and the similarity index. A Catalog is read-only once
// loaded; callers that refresh it swap in a new value.
type Catalog struct {
	Events     []Event         `json:"events"`
	Users      []User          `json:"users"`
	Similarity SimilarityIndex `json:"eventSimilarity"`
}

// Validate checks every event and user and rejects duplicate IDs.
// Similarity entries referencing unknown events are allowed.
func (c *Catalog) Validate() error {
	seenEvents := make(map[string]bool, len(c.Events))
	for i := range c.Events {
		e := &c.Events[i]
		if err := e.Validate(); err != nil {
			return fmt.Errorf("invalid event at index %d: %w", i, err)
		}
		if seenEvents[e.ID] {
			return fmt.Errorf("duplicate event ID: %s", e.ID)
		}
		seenEvents[e.ID] = true
	}

	seenUsers := make(map[string]bool, len(c.Users))
	for i := range c.Users {
		u := &c.Users[i]
		if err := u.Validate(); err != nil {
			return fmt.Errorf("invalid user at index %d: %w", i, err)
		}
		if seenUsers[u.ID] {
			return fmt.Errorf("duplicate user ID: %s", u.ID)
		}
		seenUsers[u.ID] = true
	}
	return nil
}

// User returns the user with the given ID.
func (c *Catalog) User(id string) (*User, bool) {
	for i := range c.Users {
		if c.Users[i].ID == id {
			return &c.Users[i], true
		}
	}
	return nil, false
}
