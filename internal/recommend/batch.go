package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rewired-gh/eventoracle/internal/models"
	"golang.org/x/sync/errgroup"
)

// UserError is a per-user failure in a batch run. It does not abort the
// batch.
type UserError struct {
	UserID string
	Err    error
}

func (e UserError) Error() string {
	return fmt.Sprintf("recommendation error for user %s: %v", e.UserID, e.Err)
}

func (e UserError) Unwrap() error {
	return e.Err
}

// BatchOptions control a batch run over many users.
type BatchOptions struct {
	Limit   int
	Workers int

	// Nearby enables nearby-user expansion for users without explicit
	// preferences.
	Nearby         bool
	NearbyRadiusKm float64
}

// RecommendUsers runs one independent request per user against a shared,
// read-only catalog, with at most opts.Workers requests in flight.
// Results keep the order of users; a failed user leaves a nil entry and is
// reported in the returned errors. Only context cancellation is returned
// as the final error.
func (r *Recommender) RecommendUsers(ctx context.Context, catalog *models.Catalog, users []*models.User, opts BatchOptions) ([]*Result, []UserError, error) {
	results := make([]*Result, len(users))
	var (
		mu       sync.Mutex
		userErrs []UserError
	)

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	nearbyRadius := opts.NearbyRadiusKm
	if nearbyRadius <= 0 {
		nearbyRadius = DefaultNearbyRadiusKm
	}

	var byID map[string]*models.Event
	if opts.Nearby {
		byID = indexEvents(catalog.Events)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, user := range users {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if user == nil {
				mu.Lock()
				userErrs = append(userErrs, UserError{Err: errors.New("user must not be nil")})
				mu.Unlock()
				return nil
			}

			req := Request{
				User:       user,
				Events:     catalog.Events,
				Similarity: catalog.Similarity,
				Limit:      opts.Limit,
			}
			if opts.Nearby && len(user.Preferences) == 0 {
				profile, _ := BuildProfile(user, byID)
				req.ExtraCandidates = NearbyCandidates(user, profile, catalog.Users, nearbyRadius)
			}

			res, err := r.Recommend(gctx, req)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				mu.Lock()
				userErrs = append(userErrs, UserError{UserID: user.ID, Err: err})
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, userErrs, fmt.Errorf("batch recommendation cancelled: %w", err)
	}
	return results, userErrs, nil
}
