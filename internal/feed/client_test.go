package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const catalogBody = `{
  "events": [
    {"id": "e1", "title": "Concert", "location": {"lat": 40.71, "lng": -74.0}, "categories": ["music"], "popularity": 0.9},
    {"id": "e2", "title": "Gallery", "location": {"lat": 40.75, "lng": -73.98}, "categories": ["art"], "popularity": 0.4}
  ],
  "users": [
    {"id": "u1", "location": {"lat": 40.7, "lng": -74.01}, "preferences": ["music"], "attendedEvents": ["e1"]}
  ],
  "eventSimilarity": {"e1": ["e2"]}
}`

func TestFetchCatalog(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog" {
			t.Errorf("Expected path /catalog, got %s", r.URL.Path)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Expected Accept: application/json, got %s", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogBody))
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL+"/", 5*time.Second, 3, time.Millisecond)
	catalog, err := client.FetchCatalog(context.Background())
	if err != nil {
		t.Fatalf("FetchCatalog failed: %v", err)
	}

	if len(catalog.Events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(catalog.Events))
	}
	if catalog.Events[1].Title != "Gallery" {
		t.Errorf("Expected second event Gallery, got %s", catalog.Events[1].Title)
	}
	if _, ok := catalog.User("u1"); !ok {
		t.Error("Expected user u1 in catalog")
	}
	if got := catalog.Similarity.Similar("e1"); len(got) != 1 || got[0] != "e2" {
		t.Errorf("Expected e1 similar to [e2], got %v", got)
	}
}

func TestFetchCatalog_RetriesServerErrors(t *testing.T) {
	var calls int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(catalogBody))
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 5*time.Second, 3, time.Millisecond)
	if _, err := client.FetchCatalog(context.Background()); err != nil {
		t.Fatalf("FetchCatalog failed after retries: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 calls, got %d", got)
	}
}

func TestFetchCatalog_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCalls int32
	}{
		{"persistent server error", http.StatusInternalServerError, "", 2},
		{"client error is not retried", http.StatusNotFound, "", 1},
		{"malformed body", http.StatusOK, `{"events": [`, 1},
		{"invalid coordinates", http.StatusOK, `{"events": [{"id": "e1", "location": {"lat": 91, "lng": 0}, "popularity": 0.5}]}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer mockServer.Close()

			client := NewClient(mockServer.URL, 5*time.Second, 2, time.Millisecond)
			if _, err := client.FetchCatalog(context.Background()); err == nil {
				t.Error("Expected error")
			}
			if got := atomic.LoadInt32(&calls); got != tt.wantCalls {
				t.Errorf("Expected %d calls, got %d", tt.wantCalls, got)
			}
		})
	}
}

func TestFetchCatalog_ContextCancelled(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer mockServer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(mockServer.URL, 5*time.Second, 3, time.Hour)
	if _, err := client.FetchCatalog(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
