package recommend

import (
	"math"
	"reflect"
	"testing"

	"github.com/rewired-gh/eventoracle/internal/models"
)

func TestBuildProfile(t *testing.T) {
	events := []models.Event{
		event("jazz-night", north(10), 0.5, "music", "jazz"),
		event("gallery", south(40), 0.5, "art"),
		event("unrelated", north(1000), 0.5, "sports"),
	}
	byID := indexEvents(events)

	t.Run("explicit and attended categories", func(t *testing.T) {
		user := &models.User{
			ID:             "user-1",
			Preferences:    []string{"music"},
			AttendedEvents: []string{"jazz-night", "gallery", "ghost-event"},
		}
		profile, maxDist := BuildProfile(user, byID)

		want := Profile{"music": 2, "jazz": 1, "art": 1}
		if !reflect.DeepEqual(profile, want) {
			t.Errorf("profile = %v, want %v", profile, want)
		}
		if math.Abs(maxDist-40) > 1e-6 {
			t.Errorf("maxAttendedDistance = %f, want 40", maxDist)
		}
	})

	t.Run("repeated attendance counts twice", func(t *testing.T) {
		user := &models.User{ID: "user-1", AttendedEvents: []string{"gallery", "gallery"}}
		profile, _ := BuildProfile(user, byID)
		if profile["art"] != 2 {
			t.Errorf("art weight = %f, want 2", profile["art"])
		}
	})

	t.Run("duplicate preferences seed once", func(t *testing.T) {
		user := &models.User{ID: "user-1", Preferences: []string{"music", "music"}}
		profile, maxDist := BuildProfile(user, byID)
		if profile["music"] != 1 {
			t.Errorf("music weight = %f, want 1", profile["music"])
		}
		if maxDist != 0 {
			t.Errorf("maxAttendedDistance = %f, want 0 without history", maxDist)
		}
	})

	t.Run("only stale history", func(t *testing.T) {
		user := &models.User{ID: "user-1", AttendedEvents: []string{"gone-1", "gone-2"}}
		profile, maxDist := BuildProfile(user, byID)
		if len(profile) != 0 {
			t.Errorf("expected empty profile, got %v", profile)
		}
		if maxDist != 0 {
			t.Errorf("maxAttendedDistance = %f, want 0", maxDist)
		}
	})
}

func TestProfilePoints(t *testing.T) {
	p := Profile{"music": 2, "jazz": 1}
	e := event("e", north(1), 0.1, "music", "jazz", "food")
	if got := p.Points(&e); got != 3 {
		t.Errorf("Points() = %f, want 3", got)
	}
	none := event("n", north(1), 0.1, "sports")
	if got := p.Points(&none); got != 0 {
		t.Errorf("Points() = %f, want 0", got)
	}
}

func TestResolveCandidates(t *testing.T) {
	user := &models.User{ID: "user-1", AttendedEvents: []string{"a", "b", "not-indexed"}}
	index := models.SimilarityIndex{
		"a": {"c", "b", "d"},
		"b": {"d", "e"},
		"z": {"x"},
	}

	got := ResolveCandidates(user, index).IDs()
	want := []string{"c", "d", "e"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("candidates = %v, want %v", got, want)
	}

	if set := ResolveCandidates(user, nil); len(set) != 0 {
		t.Errorf("nil index should give no candidates, got %v", set.IDs())
	}
}

func TestCandidateSetMerge(t *testing.T) {
	set := CandidateSet{"a": {}}
	set.Merge([]string{"b", "attended", "a"}, map[string]bool{"attended": true})

	want := []string{"a", "b"}
	if got := set.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("merged candidates = %v, want %v", got, want)
	}
}

func TestNearbyCandidates(t *testing.T) {
	user := &models.User{ID: "me", Location: north(0)}
	users := []models.User{
		*user,
		{ID: "near-music", Location: north(20), Preferences: []string{"music"}, AttendedEvents: []string{"x", "y"}},
		{ID: "near-music-2", Location: south(30), Preferences: []string{"music", "art"}, AttendedEvents: []string{"y", "w"}},
		{ID: "far-music", Location: north(200), Preferences: []string{"music"}, AttendedEvents: []string{"far"}},
		{ID: "near-art", Location: north(5), Preferences: []string{"art"}, AttendedEvents: []string{"z"}},
	}

	got := NearbyCandidates(user, Profile{"music": 1}, users, DefaultNearbyRadiusKm)
	want := []string{"x", "y", "w"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NearbyCandidates() = %v, want %v", got, want)
	}

	if got := NearbyCandidates(user, Profile{}, users, DefaultNearbyRadiusKm); got != nil {
		t.Errorf("empty profile should find nobody, got %v", got)
	}
}
