// Package sqlite keeps the per-iteration run journal in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aretw0/gleaner/pkg/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS iterations (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	iteration   INTEGER NOT NULL,
	state       TEXT NOT NULL,
	action      TEXT NOT NULL,
	svf         REAL NOT NULL,
	found       INTEGER NOT NULL,
	rule        TEXT,
	duration_ms INTEGER NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS iterations_run ON iterations (run_id, iteration);
`

// Journal implements ports.Journal on SQLite.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database and runs migrations.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record appends one iteration.
func (j *Journal) Record(ctx context.Context, entry domain.JournalEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO iterations (run_id, iteration, state, action, svf, found, rule, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Iteration,
		entry.State,
		entry.Action,
		entry.Value,
		entry.Found,
		nullIfEmpty(entry.Rule),
		entry.Duration.Milliseconds(),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record iteration: %w", err)
	}
	return nil
}

// Entries returns the journal of a run in iteration order.
func (j *Journal) Entries(ctx context.Context, runID string) ([]domain.JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT run_id, iteration, state, action, svf, found, rule, duration_ms, created_at
		 FROM iterations WHERE run_id = ? ORDER BY iteration, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var (
			e        domain.JournalEntry
			rule     sql.NullString
			duration int64
			created  string
		)
		if err := rows.Scan(&e.RunID, &e.Iteration, &e.State, &e.Action, &e.Value, &e.Found, &rule, &duration, &created); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		e.Rule = rule.String
		e.Duration = time.Duration(duration) * time.Millisecond
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
