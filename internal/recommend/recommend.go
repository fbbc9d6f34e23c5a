// Package recommend ranks events for a user.
//
// A request runs in four steps:
//
//  1. BuildProfile derives a weighted category profile from the user's
//     explicit preferences and attended events, plus the farthest distance
//     the user has travelled to an event.
//  2. ResolveCandidates expands attended events through the similarity
//     index (optionally merged with NearbyCandidates).
//  3. An expansion loop scores every unseen event inside a search radius,
//     widening the radius by a constant factor until enough events are
//     scored or the ceiling is reached.
//  4. The scored events are ranked by score and truncated to the limit.
//
// Every mutable structure is allocated per request, so one Recommender can
// serve concurrent requests as long as the catalog is not mutated meanwhile.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/eventoracle/internal/logger"
	"github.com/rewired-gh/eventoracle/internal/models"
)

const (
	// DefaultFallbackRadiusKm is the starting radius for users with no history.
	DefaultFallbackRadiusKm = 25.0
	// DefaultStartMultiplier scales the farthest attended distance into the
	// starting radius.
	DefaultStartMultiplier = 1.25
	// DefaultExpansionFactor widens the radius between passes.
	DefaultExpansionFactor = 1.5
	// DefaultCeilingKm bounds the search radius.
	DefaultCeilingKm = 4500.0
)

// ErrInvalidLimit is returned when fewer than one recommendation is requested.
var ErrInvalidLimit = errors.New("limit must be at least 1")

// Options tune the expansion loop and the scoring weights.
type Options struct {
	FallbackRadiusKm float64
	StartMultiplier  float64
	ExpansionFactor  float64
	CeilingKm        float64
	Weights          PolicyWeights
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{
		FallbackRadiusKm: DefaultFallbackRadiusKm,
		StartMultiplier:  DefaultStartMultiplier,
		ExpansionFactor:  DefaultExpansionFactor,
		CeilingKm:        DefaultCeilingKm,
		Weights:          DefaultPolicyWeights(),
	}
}

// Validate checks that the options guarantee a terminating expansion loop.
func (o Options) Validate() error {
	if !(o.FallbackRadiusKm > 0) {
		return fmt.Errorf("fallback radius must be positive, got %v", o.FallbackRadiusKm)
	}
	if !(o.StartMultiplier > 0) {
		return fmt.Errorf("start multiplier must be positive, got %v", o.StartMultiplier)
	}
	if !(o.ExpansionFactor > 1) {
		return fmt.Errorf("expansion factor must be greater than 1, got %v", o.ExpansionFactor)
	}
	if !(o.CeilingKm > 0) || math.IsInf(o.CeilingKm, 0) {
		return fmt.Errorf("ceiling must be a positive finite distance, got %v", o.CeilingKm)
	}
	if err := o.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}
	return nil
}

// Recommender ranks events using a fixed set of Options.
type Recommender struct {
	opts Options
}

// New creates a Recommender, rejecting options that could loop forever.
func New(opts Options) (*Recommender, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Recommender{opts: opts}, nil
}

// Request is the input of one recommendation run. Events and Similarity are
// read but never modified.
type Request struct {
	User       *models.User
	Events     []models.Event
	Similarity models.SimilarityIndex
	Limit      int

	// ExtraCandidates are merged into the similarity candidate set, e.g. the
	// output of NearbyCandidates. Attended events are still excluded.
	ExtraCandidates []string
}

// Result is the outcome of one recommendation run.
type Result struct {
	RequestID   string
	UserID      string
	Events      []models.Event
	Scored      []ScoredCandidate
	Passes      int
	FinalRadius float64
	Duration    time.Duration
}

// Recommend returns up to req.Limit events for req.User. Fewer events are
// returned when the catalog has fewer eligible events inside the ceiling;
// that is not an error.
//
// ctx is checked between passes only.
func (r *Recommender) Recommend(ctx context.Context, req Request) (*Result, error) {
	if req.Limit < 1 {
		return nil, ErrInvalidLimit
	}
	if req.User == nil {
		return nil, errors.New("user must not be nil")
	}

	start := time.Now()
	requestID := uuid.New().String()

	profile, maxAttended := BuildProfile(req.User, indexEvents(req.Events))
	attended := attendedSet(req.User)
	candidates := ResolveCandidates(req.User, req.Similarity)
	candidates.Merge(req.ExtraCandidates, attended)

	s := &scorer{
		user:       req.User,
		events:     req.Events,
		profile:    profile,
		candidates: candidates,
		attended:   attended,
		weights:    r.opts.Weights,
		seen:       make(map[string]bool),
	}
	exp := newExpander(r.opts, len(req.User.AttendedEvents) > 0, maxAttended)

	logger.Debug("recommend[%s]: user=%s profile=%d categories, candidates=%d, start radius=%.2fkm",
		requestID, req.User.ID, len(profile), len(candidates), exp.radius)

	var scored []ScoredCandidate
	for exp.state != StateDone {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("recommendation for user %s aborted after %d passes: %w", req.User.ID, exp.passes, err)
		}

		batch := s.pass(exp.radius)
		scored = append(scored, batch...)
		logger.Debug("recommend[%s]: pass %d (%s) radius=%.2fkm scored=%d total=%d",
			requestID, exp.passes+1, exp.state, exp.radius, len(batch), len(scored))

		exp.advance(len(scored), req.Limit)
	}

	res := &Result{
		RequestID:   requestID,
		UserID:      req.User.ID,
		Events:      selectTop(scored, req.Limit),
		Scored:      scored,
		Passes:      exp.passes,
		FinalRadius: exp.radius,
		Duration:    time.Since(start),
	}
	observe(res, req.Limit)

	if len(res.Events) < req.Limit {
		logger.Debug("recommend[%s]: only %d of %d events reachable within %.0fkm",
			requestID, len(res.Events), req.Limit, r.opts.CeilingKm)
	}
	return res, nil
}

var defaultRecommender = &Recommender{opts: DefaultOptions()}

// Recommend ranks events for user with the default options and returns at
// most limit of them.
func Recommend(user *models.User, events []models.Event, similarity models.SimilarityIndex, limit int) ([]models.Event, error) {
	res, err := defaultRecommender.Recommend(context.Background(), Request{
		User:       user,
		Events:     events,
		Similarity: similarity,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	return res.Events, nil
}
