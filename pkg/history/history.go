// Package history stores check runs in a SQLite database so results can be
// compared across recordings and over time.
package history

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver.

	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
)

// ErrRunNotFound is returned when a run id is not in the database.
var ErrRunNotFound = errors.New("run not found")

// timeLayout keeps created_at lexically sortable.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	file        TEXT NOT NULL,
	level       TEXT NOT NULL,
	passed      INTEGER NOT NULL,
	warnings    INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	strict      INTEGER NOT NULL,
	duration_ns INTEGER NOT NULL,
	created_at  TEXT NOT NULL,
	report_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at);
`

// Run is one stored check.
type Run struct {
	CreatedAt time.Time      `json:"created_at"`
	ID        string         `json:"id"`
	File      string         `json:"file"`
	Level     report.Level   `json:"level"`
	Summary   report.Summary `json:"summary"`
	Duration  time.Duration  `json:"duration_ns"`
	Strict    bool           `json:"strict"`
}

// Store manages run history in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and runs migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()

		return nil, fmt.Errorf("pragma: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()

		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a finalized report document.
func (s *Store) Record(ctx context.Context, doc report.Document, strict bool, d time.Duration) (Run, error) {
	var buf bytes.Buffer

	if err := report.EncodeJSON(&buf, doc); err != nil {
		return Run{}, err
	}

	run := Run{
		ID:        uuid.New().String(),
		File:      doc.File,
		Level:     doc.Level,
		Summary:   doc.Summary,
		Strict:    strict,
		Duration:  d,
		CreatedAt: s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, file, level, passed, warnings, failed, strict, duration_ns, created_at, report_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.File, string(run.Level),
		run.Summary.Passed, run.Summary.Warnings, run.Summary.Failed,
		boolToInt(run.Strict), d.Nanoseconds(), run.CreatedAt.Format(timeLayout), buf.String(),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	return run, nil
}

// List returns up to limit runs, newest first. A non-positive limit returns
// every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, file, level, passed, warnings, failed, strict, duration_ns, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"

		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run

	for rows.Next() {
		var (
			run        Run
			level      string
			durationNS int64
			createdAt  string
		)

		err := rows.Scan(&run.ID, &run.File, &level,
			&run.Summary.Passed, &run.Summary.Warnings, &run.Summary.Failed,
			&run.Strict, &durationNS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		run.Level = report.Level(level)
		run.Duration = time.Duration(durationNS)

		run.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// Report returns the JSON report stored for run id.
func (s *Store) Report(ctx context.Context, id string) ([]byte, error) {
	var doc string

	err := s.db.QueryRowContext(ctx, "SELECT report_json FROM runs WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}

	return []byte(doc), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
