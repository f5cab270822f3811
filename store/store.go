// Package store persists the content catalog and the retrieval event log in
// SQLite. The catalog side is read-mostly (the authoring pipeline seeds it);
// the event log side is append-only.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite handle shared by the catalog and the event log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Pass ":memory:" for an in-process database.
func Open(path string) (*Store, error) {
	dsn := buildDSN(path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Shared-cache in-memory databases break with concurrent connections.
	if strings.Contains(path, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func buildDSN(path string) string {
	pragmas := "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if path == ":memory:" {
		return "file::memory:?cache=shared&" + pragmas
	}
	if strings.HasPrefix(path, "file:") {
		if strings.Contains(path, "?") {
			return path + "&" + pragmas
		}
		return path + "?" + pragmas
	}
	return "file:" + path + "?" + pragmas
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func marshalJSON(v any) (string, error) {
	if v == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func unmarshalStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func unmarshalInto(raw string, v any) error {
	return json.Unmarshal([]byte(raw), v)
}

func unmarshalFloats(raw string) []float32 {
	if raw == "" {
		return nil
	}
	var out []float32
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
