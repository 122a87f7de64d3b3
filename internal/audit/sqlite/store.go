// SPDX-License-Identifier: Apache-2.0

// Package sqlite is the default, local audit.Store implementation:
// a ledger file at $XDG_STATE_HOME/depedit/audit.db (via internal/xdg).
// Its schema is created idempotently with CREATE TABLE IF NOT EXISTS —
// no golang-migrate source driver exists for modernc.org/sqlite in the
// dependency stack, so golang-migrate is reserved for the Postgres
// store instead (see DESIGN.md).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // database/sql driver registration

	"github.com/nlplab/depedit-go/internal/audit"
)

const timeLayout = time.RFC3339Nano

// storeLayout writes timestamps with a fixed-width fraction so that the
// text ordering of started_at in History is chronological; timeLayout
// parses it back.
const storeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT NOT NULL,
	rule_file_hash  TEXT NOT NULL,
	input_file      TEXT NOT NULL,
	sentences_seen  INTEGER NOT NULL,
	rules_fired     INTEGER NOT NULL,
	warnings        INTEGER NOT NULL,
	started_at      TEXT NOT NULL,
	finished_at     TEXT NOT NULL,
	PRIMARY KEY (rule_file_hash, input_file, run_id)
);
`

// Store is a sqlite-backed audit.Store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening audit database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordRun implements audit.Store.
func (s *Store) RecordRun(ctx context.Context, rec audit.RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, rule_file_hash, input_file, sentences_seen, rules_fired, warnings, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.RuleFileHash, rec.InputFile, rec.SentencesSeen, rec.RulesFired, rec.Warnings,
		rec.StartedAt.UTC().Format(storeLayout), rec.FinishedAt.UTC().Format(storeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", rec.RunID, err)
	}
	return nil
}

// History implements audit.Store.
func (s *Store) History(ctx context.Context, ruleFileHash string, limit int) ([]audit.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, rule_file_hash, input_file, sentences_seen, rules_fired, warnings, started_at, finished_at
		 FROM runs WHERE rule_file_hash = ? ORDER BY started_at DESC LIMIT ?`,
		ruleFileHash, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying run history: %w", err)
	}
	defer rows.Close()

	var records []audit.RunRecord
	for rows.Next() {
		var rec audit.RunRecord
		var startedAt, finishedAt string
		if err := rows.Scan(&rec.RunID, &rec.RuleFileHash, &rec.InputFile, &rec.SentencesSeen,
			&rec.RulesFired, &rec.Warnings, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		rec.StartedAt, err = parseTime(startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		rec.FinishedAt, err = parseTime(finishedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing finished_at: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}
	return records, nil
}

// Close implements audit.Store.
func (s *Store) Close() error {
	return s.db.Close()
}
