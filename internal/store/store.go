// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists ORCID person lookups in SQLite so repeated runs over
// the same bibliography do not refetch every candidate.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/csl-quickstatements/internal/orcid"
)

// Store is a SQLite-backed orcid.PersonCache.
type Store struct {
	db *sql.DB
}

var _ orcid.PersonCache = (*Store)(nil)

// Open opens or creates the person cache database at path, creating its
// parent directory as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Registry lookups run concurrently; one connection serializes writes.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS persons (
		orcid TEXT PRIMARY KEY,
		given TEXT NOT NULL,
		family TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// GetPerson returns the cached person for id and when it was fetched.
func (s *Store) GetPerson(ctx context.Context, id string) (orcid.Person, time.Time, bool, error) {
	var (
		p       = orcid.Person{ORCID: id}
		fetched string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT given, family, fetched_at FROM persons WHERE orcid = ?`, id,
	).Scan(&p.Given, &p.Family, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return orcid.Person{}, time.Time{}, false, nil
	}
	if err != nil {
		return orcid.Person{}, time.Time{}, false, fmt.Errorf("querying person %s: %w", id, err)
	}

	at, err := time.Parse(time.RFC3339, fetched)
	if err != nil {
		return orcid.Person{}, time.Time{}, false, fmt.Errorf("parsing fetch time of %s: %w", id, err)
	}
	return p, at, true, nil
}

// PutPerson stores p, replacing any earlier entry.
func (s *Store) PutPerson(ctx context.Context, p orcid.Person, fetched time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO persons (orcid, given, family, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(orcid) DO UPDATE SET given = excluded.given, family = excluded.family, fetched_at = excluded.fetched_at`,
		p.ORCID, p.Given, p.Family, fetched.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storing person %s: %w", p.ORCID, err)
	}
	return nil
}

// Count returns the number of cached persons.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM persons`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting persons: %w", err)
	}
	return n, nil
}

// Clear removes every cached person and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM persons`)
	if err != nil {
		return 0, fmt.Errorf("clearing persons: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clearing persons: %w", err)
	}
	return n, nil
}
