// Package store keeps an optional sqlite history of runs and the listings
// they found, so repeated scrapes build a local dataset beyond the per-run
// CSV/JSON exports.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cbrandt/indeedhunt/internal/types"
)

// Store handles all database operations.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the sqlite database at dbPath and applies the
// schema.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_title TEXT NOT NULL,
		location TEXT NOT NULL,
		pages INTEGER NOT NULL,
		listings INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS listings (
		job_key TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		company TEXT NOT NULL,
		location TEXT,
		salary TEXT,
		description TEXT,
		url TEXT NOT NULL,
		date_posted TEXT,
		job_type TEXT,
		first_seen_at DATETIME NOT NULL,
		last_seen_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_listings_company ON listings(company);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}
	return nil
}

// RecordRun saves one completed run and upserts its listings. Listings seen
// in earlier runs keep their first_seen_at and get a fresh last_seen_at.
func (s *Store) RecordRun(jobTitle, location string, pages int, jobs []types.JobListing, started, finished time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (job_title, location, pages, listings, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		jobTitle, location, pages, len(jobs), started, finished,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	upsert := `
	INSERT INTO listings (job_key, title, company, location, salary, description,
		url, date_posted, job_type, first_seen_at, last_seen_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(job_key) DO UPDATE SET
		title = excluded.title,
		company = excluded.company,
		location = excluded.location,
		salary = excluded.salary,
		description = excluded.description,
		url = excluded.url,
		date_posted = excluded.date_posted,
		job_type = excluded.job_type,
		last_seen_at = excluded.last_seen_at`

	for _, j := range jobs {
		_, err := tx.Exec(upsert,
			j.Key(), j.Title, j.Company, j.Location, j.Salary, j.Description,
			j.URL, j.DatePosted, j.JobType, finished, finished,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert listing %s: %w", j.Key(), err)
		}
	}

	return tx.Commit()
}

// CountListings returns how many distinct listings the store has seen.
func (s *Store) CountListings() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM listings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return n, nil
}

// CountRuns returns how many runs have been recorded.
func (s *Store) CountRuns() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}
