// Package history persists build reports in a local SQLite database so past
// build outcomes can be inspected and compared between runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
	"github.com/docsmith/docsmith/internal/site"
)

// Record is one persisted build.
type Record struct {
	ID            int64             `json:"id"`
	BuildID       string            `json:"build_id"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
	Outcome       site.BuildOutcome `json:"outcome"`
	PagesRendered int               `json:"pages_rendered"`
	PagesSkipped  int               `json:"pages_skipped"`
	IssueCount    int               `json:"issue_count"`
	Issues        []site.Issue      `json:"issues,omitempty"`
}

// Store defines the interface for persisting and querying build history.
type Store interface {
	// Record persists a finalized build report.
	Record(ctx context.Context, report *site.Report) error

	// Recent returns the most recent builds, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Get returns the record for one build.
	Get(ctx context.Context, buildID string) (*Record, error)

	// Close releases the underlying database.
	Close() error
}

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and if needed creates) the history database.
// Use ":memory:" for an in-memory store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, ferrors.HistoryError(err, "open history database").
			WithContext("path", dbPath).
			Build()
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, ferrors.HistoryError(err, "initialize history schema").
			WithContext("path", dbPath).
			Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL UNIQUE,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		pages_rendered INTEGER NOT NULL,
		pages_skipped INTEGER NOT NULL,
		issue_count INTEGER NOT NULL,
		issues TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	CREATE INDEX IF NOT EXISTS idx_builds_outcome ON builds(outcome);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record persists a finalized build report.
func (s *SQLiteStore) Record(ctx context.Context, report *site.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var issuesJSON []byte
	if len(report.Issues) > 0 {
		var err error
		issuesJSON, err = json.Marshal(report.Issues)
		if err != nil {
			return ferrors.HistoryError(err, "marshal build issues").
				WithContext("build_id", report.BuildID).
				Build()
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, started_at, finished_at, outcome, pages_rendered, pages_skipped, issue_count, issues)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.BuildID, report.Start.Unix(), report.End.Unix(), string(report.Outcome),
		report.PagesRendered, report.PagesSkipped, len(report.Issues), issuesJSON,
	)
	if err != nil {
		return ferrors.HistoryError(err, "insert build record").
			WithContext("build_id", report.BuildID).
			Build()
	}
	return nil
}

// Recent returns the most recent builds, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, build_id, started_at, finished_at, outcome, pages_rendered, pages_skipped, issue_count, issues
		 FROM builds ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, ferrors.HistoryError(err, "query recent builds").Build()
	}
	defer func() { _ = rows.Close() }()

	return scanRecords(rows)
}

// Get returns the record for one build, or a not_found error.
func (s *SQLiteStore) Get(ctx context.Context, buildID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, build_id, started_at, finished_at, outcome, pages_rendered, pages_skipped, issue_count, issues
		 FROM builds WHERE build_id = ?`, buildID)
	if err != nil {
		return nil, ferrors.HistoryError(err, "query build record").
			WithContext("build_id", buildID).
			Build()
	}
	defer func() { _ = rows.Close() }()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ferrors.NewError(ferrors.CategoryNotFound, "build not found").
			WithContext("build_id", buildID).
			Build()
	}
	return &records[0], nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var r Record
		var started, finished int64
		var outcome string
		var issuesJSON []byte

		if err := rows.Scan(&r.ID, &r.BuildID, &started, &finished, &outcome,
			&r.PagesRendered, &r.PagesSkipped, &r.IssueCount, &issuesJSON); err != nil {
			return nil, ferrors.HistoryError(err, "scan build record").Build()
		}
		r.StartedAt = time.Unix(started, 0)
		r.FinishedAt = time.Unix(finished, 0)
		r.Outcome = site.BuildOutcome(outcome)
		if len(issuesJSON) > 0 {
			if err := json.Unmarshal(issuesJSON, &r.Issues); err != nil {
				return nil, ferrors.HistoryError(err, "unmarshal build issues").
					WithContext("build_id", r.BuildID).
					Build()
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.HistoryError(err, "iterate build records").Build()
	}
	return records, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
