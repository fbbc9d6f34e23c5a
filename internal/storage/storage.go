// Package storage loads event catalogs from local sources.
//
// Two sources are supported: a JSON document on disk (LoadFile) and a SQLite
// database (SQLite). Both are read-only from the recommender's point of view
// and return a validated models.Catalog; invalid coordinates or popularity
// values fail here, before anything is scored.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rewired-gh/eventoracle/internal/models"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id         TEXT PRIMARY KEY,
	position   INTEGER NOT NULL DEFAULT 0,
	title      TEXT NOT NULL DEFAULT '',
	latitude   REAL NOT NULL,
	longitude  REAL NOT NULL,
	popularity REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS event_categories (
	event_id TEXT NOT NULL REFERENCES events(id),
	category TEXT NOT NULL,
	PRIMARY KEY (event_id, category)
);
CREATE TABLE IF NOT EXISTS users (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL DEFAULT '',
	latitude  REAL NOT NULL,
	longitude REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS user_preferences (
	user_id  TEXT NOT NULL REFERENCES users(id),
	category TEXT NOT NULL,
	PRIMARY KEY (user_id, category)
);
CREATE TABLE IF NOT EXISTS user_attended (
	user_id  TEXT NOT NULL REFERENCES users(id),
	position INTEGER NOT NULL,
	event_id TEXT NOT NULL,
	PRIMARY KEY (user_id, position)
);
CREATE TABLE IF NOT EXISTS event_similarity (
	event_id   TEXT NOT NULL,
	position   INTEGER NOT NULL,
	similar_id TEXT NOT NULL,
	PRIMARY KEY (event_id, position)
);
`

// SQLite reads catalogs from a SQLite database.
type SQLite struct {
	db *sql.DB
}

// Open opens the database at path. ":memory:" gives a private in-memory
// database, which is only useful together with EnsureSchema in tests.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps ":memory:" databases alive and consistent
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// DB exposes the handle for fixtures and tooling that populate the tables.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// EnsureSchema creates the catalog tables if they do not exist.
func (s *SQLite) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// LoadCatalog reads every event, user and similarity row and validates the
// result. Events keep their stored position order, which is the catalog order
// used to break score ties.
func (s *SQLite) LoadCatalog(ctx context.Context) (*models.Catalog, error) {
	events, err := s.loadEvents(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	similarity, err := s.loadSimilarity(ctx)
	if err != nil {
		return nil, err
	}

	catalog := &models.Catalog{Events: events, Users: users, Similarity: similarity}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return catalog, nil
}

func (s *SQLite) loadEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, latitude, longitude, popularity FROM events ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Location.Latitude, &e.Location.Longitude, &e.Popularity); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	categories, err := s.groupedStrings(ctx,
		`SELECT event_id, category FROM event_categories ORDER BY event_id, category`)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Categories = categories[events[i].ID]
	}
	return events, nil
}

func (s *SQLite) loadUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, latitude, longitude FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Location.Latitude, &u.Location.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	prefs, err := s.groupedStrings(ctx,
		`SELECT user_id, category FROM user_preferences ORDER BY user_id, category`)
	if err != nil {
		return nil, err
	}
	attended, err := s.groupedStrings(ctx,
		`SELECT user_id, event_id FROM user_attended ORDER BY user_id, position`)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Preferences = prefs[users[i].ID]
		users[i].AttendedEvents = attended[users[i].ID]
	}
	return users, nil
}

func (s *SQLite) loadSimilarity(ctx context.Context) (models.SimilarityIndex, error) {
	grouped, err := s.groupedStrings(ctx,
		`SELECT event_id, similar_id FROM event_similarity ORDER BY event_id, position`)
	if err != nil {
		return nil, err
	}
	return models.SimilarityIndex(grouped), nil
}

// groupedStrings runs a two-column query and groups the second column by the
// first, preserving row order.
func (s *SQLite) groupedStrings(ctx context.Context, query string, args ...interface{}) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		grouped[key] = append(grouped[key], value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return grouped, nil
}
