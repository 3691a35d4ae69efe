// Package runstore persists run results and cycle reports to SQLite.
// Persistence is best-effort history; store failures never fail a run.
package runstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hochfrequenz/auto-reviewer/internal/domain"
)

// Store provides SQLite-backed run history
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveResult records a terminal run result
func (s *Store) SaveResult(res domain.RunResult) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (id, mode, branch, outcome, iterations, pr_url, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		uuid.NewString(),
		res.Identity.Mode,
		res.Identity.Branch,
		string(res.Outcome),
		res.Iterations,
		res.PRURL,
		res.Error,
		res.Identity.StartedAt,
		res.FinishedAt,
	)
	return err
}

// SaveCycle records an aggregated cycle report
func (s *Store) SaveCycle(report domain.CycleReport) error {
	_, err := s.db.Exec(`
		INSERT INTO cycles (started_at, finished_at, runs_total, runs_merged, runs_failed)
		VALUES (?, ?, ?, ?, ?)
	`,
		report.StartedAt,
		report.FinishedAt,
		len(report.Results),
		report.Merged(),
		report.Failed(),
	)
	return err
}

// RunRecord is a persisted run row
type RunRecord struct {
	ID         string
	Mode       string
	Branch     string
	Outcome    string
	Iterations int
	PRURL      string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// ListRecent returns the most recent runs, newest first
func (s *Store) ListRecent(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, mode, branch, outcome, iterations, pr_url, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var prURL, errMsg sql.NullString
		if err := rows.Scan(&r.ID, &r.Mode, &r.Branch, &r.Outcome, &r.Iterations, &prURL, &errMsg, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		r.PRURL = prURL.String
		r.Error = errMsg.String
		records = append(records, r)
	}
	return records, rows.Err()
}
