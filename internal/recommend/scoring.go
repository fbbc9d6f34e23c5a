package recommend

import (
	"fmt"
	"math"

	"github.com/rewired-gh/eventoracle/internal/geo"
	"github.com/rewired-gh/eventoracle/internal/models"
)

// Policy names the weight set used to score one candidate. The choice is
// made per event, in priority order, by SelectPolicy.
type Policy int

const (
	// PolicyNoPreference applies when no profile category matches the event.
	// Distance and popularity dominate (cold-start fallback).
	PolicyNoPreference Policy = iota
	// PolicyPreferenceNoSimilarity applies when categories match but the user
	// has no collaborative candidates at all.
	PolicyPreferenceNoSimilarity
	// PolicyPreferenceAndSimilarity applies when categories match and the
	// candidate set is non-empty.
	PolicyPreferenceAndSimilarity
)

func (p Policy) String() string {
	switch p {
	case PolicyNoPreference:
		return "no_preference"
	case PolicyPreferenceNoSimilarity:
		return "preference_no_similarity"
	case PolicyPreferenceAndSimilarity:
		return "preference_and_similarity"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// SelectPolicy picks the weighting policy for an event with the given
// preference points, given the size of the user's candidate set.
func SelectPolicy(preferencePoints float64, candidateSetSize int) Policy {
	switch {
	case preferencePoints > 0 && candidateSetSize > 0:
		return PolicyPreferenceAndSimilarity
	case preferencePoints > 0:
		return PolicyPreferenceNoSimilarity
	default:
		return PolicyNoPreference
	}
}

// Weights are the coefficients of the linear scoring function.
type Weights struct {
	Preference float64 `mapstructure:"preference"`
	Distance   float64 `mapstructure:"distance"`
	Similarity float64 `mapstructure:"similarity"`
	Popularity float64 `mapstructure:"popularity"`
}

func (w Weights) validate() error {
	for name, v := range map[string]float64{
		"preference": w.Preference,
		"distance":   w.Distance,
		"similarity": w.Similarity,
		"popularity": w.Popularity,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s weight must be a non-negative number, got %v", name, v)
		}
	}
	return nil
}

// PolicyWeights holds one weight set per policy.
type PolicyWeights struct {
	NoPreference            Weights `mapstructure:"no_preference"`
	PreferenceNoSimilarity  Weights `mapstructure:"preference_no_similarity"`
	PreferenceAndSimilarity Weights `mapstructure:"preference_and_similarity"`
}

// DefaultPolicyWeights returns the production weight table.
func DefaultPolicyWeights() PolicyWeights {
	return PolicyWeights{
		NoPreference: Weights{
			Distance:   0.45,
			Popularity: 0.35,
			Similarity: 0.2,
		},
		PreferenceNoSimilarity: Weights{
			Distance:   0.3,
			Popularity: 0.35,
			Preference: 0.4,
		},
		PreferenceAndSimilarity: Weights{
			Preference: 0.4,
			Distance:   0.35,
			Similarity: 0.15,
			Popularity: 0.1,
		},
	}
}

// For returns the weight set of policy p.
func (pw PolicyWeights) For(p Policy) Weights {
	switch p {
	case PolicyPreferenceAndSimilarity:
		return pw.PreferenceAndSimilarity
	case PolicyPreferenceNoSimilarity:
		return pw.PreferenceNoSimilarity
	default:
		return pw.NoPreference
	}
}

// Validate checks every weight in the table.
func (pw PolicyWeights) Validate() error {
	for _, p := range []Policy{PolicyNoPreference, PolicyPreferenceNoSimilarity, PolicyPreferenceAndSimilarity} {
		if err := pw.For(p).validate(); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Components are the raw signals of one candidate before weighting.
type Components struct {
	Preference float64
	Distance   float64
	Similarity float64
	Popularity float64
}

// Score combines components linearly with w.
func Score(w Weights, c Components) float64 {
	return c.Preference*w.Preference +
		c.Distance*w.Distance +
		c.Similarity*w.Similarity +
		c.Popularity*w.Popularity
}

// DistancePoints maps a distance inside radius onto (0,1], 1 meaning
// co-located. ok is false when the event lies outside the radius, the
// distance is unusable, or the radius is zero and the event is not
// co-located.
func DistancePoints(distance, radius float64) (points float64, ok bool) {
	if math.IsNaN(distance) || distance > radius {
		return 0, false
	}
	if radius <= 0 {
		if distance == 0 {
			return 1, true
		}
		return 0, false
	}
	return 1 - distance/radius, true
}

// ScoredCandidate is one event scored during an expansion pass.
type ScoredCandidate struct {
	Event      *models.Event
	Score      float64
	DistanceKm float64
	Radius     float64
	Policy     Policy

	// position in the catalog, used to break score ties
	order int
}

// scorer holds the request-scoped state shared by every expansion pass.
// It is never shared between requests.
type scorer struct {
	user       *models.User
	events     []models.Event
	profile    Profile
	candidates CandidateSet
	attended   map[string]bool
	weights    PolicyWeights
	seen       map[string]bool
}

// pass scores every unseen, unattended event within radius and marks each
// scored event as seen so later passes skip it.
func (s *scorer) pass(radius float64) []ScoredCandidate {
	var out []ScoredCandidate

	for i := range s.events {
		event := &s.events[i]
		if s.seen[event.ID] || s.attended[event.ID] {
			continue
		}

		distance := geo.Distance(s.user.Location, event.Location)
		distancePoints, ok := DistancePoints(distance, radius)
		if !ok {
			continue
		}

		c := Components{
			Preference: s.profile.Points(event),
			Distance:   distancePoints,
			Popularity: event.Popularity,
		}
		if s.candidates.Has(event.ID) {
			c.Similarity = 1
		}

		policy := SelectPolicy(c.Preference, len(s.candidates))
		score := Score(s.weights.For(policy), c)
		if math.IsNaN(score) {
			continue
		}

		s.seen[event.ID] = true
		out = append(out, ScoredCandidate{
			Event:      event,
			Score:      score,
			DistanceKm: distance,
			Radius:     radius,
			Policy:     policy,
			order:      i,
		})
	}

	return out
}
