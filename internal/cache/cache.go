// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides a read-through response cache for external lookups.
// Keys combine the calling function's name with its normalized arguments;
// values are opaque payload bytes with a fixed freshness window. Search,
// summary, and abstract lookups are idempotent and slowly-changing, so the
// window exists for cost and latency, not correctness.
package cache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite-backed TTL cache. The zero DSN keeps the cache in
// memory, so a chat session leaves nothing on disk; passing a path persists
// entries across CLI invocations.
type Store struct {
	db  *sql.DB
	ttl time.Duration

	// now is the clock, swappable in tests.
	now func() time.Time
}

// Open creates or opens a cache at path. An empty path uses an in-memory
// database. A non-positive ttl yields a store whose Get never hits.
func Open(path string, ttl time.Duration) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	// The in-memory database exists per connection; one connection keeps it
	// coherent and is plenty for the sequential pipeline.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, ttl: ttl, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	)`)
	return err
}

// Key builds a cache key from a function name and its normalized arguments.
func Key(fn string, args ...string) string {
	return fn + "(" + strings.Join(args, "|") + ")"
}

// Get returns the cached payload for key if present and unexpired. Expired
// rows are deleted on the way out.
func (s *Store) Get(key string) ([]byte, bool) {
	if s == nil || s.ttl <= 0 {
		return nil, false
	}

	var value []byte
	var expiresAt int64
	err := s.db.QueryRow(
		`SELECT value, expires_at FROM responses WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if err != nil {
		return nil, false
	}

	if s.now().Unix() >= expiresAt {
		s.db.Exec(`DELETE FROM responses WHERE key = ?`, key)
		return nil, false
	}
	return value, true
}

// Put stores a payload under key with the configured freshness window.
func (s *Store) Put(key string, value []byte) error {
	if s == nil || s.ttl <= 0 {
		return nil
	}
	expiresAt := s.now().Add(s.ttl).Unix()
	_, err := s.db.Exec(
		`INSERT INTO responses (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, expires_at=excluded.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("caching response: %w", err)
	}
	return nil
}
