// SPDX-License-Identifier: Apache-2.0

// Package postgres is the opt-in audit.Store backend (--audit-dsn),
// schema-managed by golang-migrate with the embedded-iofs pattern,
// unique-violation detection via jackc/pgerrcode on repeated
// (rule_file_hash, input_file, run_id) keys, and writes wrapped in
// sethvargo/go-retry.Fibonacci backoff to absorb transient
// pool-exhaustion errors.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/nlplab/depedit-go/internal/audit"
)

// pool is the subset of *pgxpool.Pool's method set this package needs,
// satisfied by both the real pool and pgxmock.PgxPoolIface in tests.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store is a PostgreSQL-backed audit.Store.
type Store struct {
	pool pool
}

var _ audit.Store = (*Store)(nil)

// Open connects to dsn, runs pending migrations, and returns a Store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if err := runMigrations(dsn); err != nil {
		return nil, err
	}
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("AUDIT_CONNECT_FAILED").Wrap(err)
	}
	return &Store{pool: p}, nil
}

// newWithPool builds a Store around an already-connected pool, for tests.
func newWithPool(p pool) *Store {
	return &Store{pool: p}
}

// RecordRun implements audit.Store. A duplicate (rule_file_hash,
// input_file, run_id) key is treated as success: re-running the same
// audited operation is idempotent, not an error.
func (s *Store) RecordRun(ctx context.Context, rec audit.RunRecord) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(50*time.Millisecond))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		_, execErr := s.pool.Exec(ctx,
			`INSERT INTO runs (run_id, rule_file_hash, input_file, sentences_seen, rules_fired, warnings, started_at, finished_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			rec.RunID, rec.RuleFileHash, rec.InputFile, rec.SentencesSeen, rec.RulesFired, rec.Warnings,
			rec.StartedAt, rec.FinishedAt,
		)
		if execErr == nil {
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(execErr, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil
		}
		return retry.RetryableError(execErr)
	})
	if err != nil {
		return oops.Code("AUDIT_RECORD_FAILED").With("run_id", rec.RunID).With("attempts", attempt).Wrap(err)
	}
	return nil
}

// History implements audit.Store.
func (s *Store) History(ctx context.Context, ruleFileHash string, limit int) ([]audit.RunRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT run_id, rule_file_hash, input_file, sentences_seen, rules_fired, warnings, started_at, finished_at
		 FROM runs WHERE rule_file_hash = $1 ORDER BY started_at DESC LIMIT $2`,
		ruleFileHash, limit,
	)
	if err != nil {
		return nil, oops.Code("AUDIT_HISTORY_FAILED").Wrap(err)
	}
	defer rows.Close()

	var records []audit.RunRecord
	for rows.Next() {
		var rec audit.RunRecord
		if err := rows.Scan(&rec.RunID, &rec.RuleFileHash, &rec.InputFile, &rec.SentencesSeen,
			&rec.RulesFired, &rec.Warnings, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, oops.Code("AUDIT_HISTORY_FAILED").Wrap(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("AUDIT_HISTORY_FAILED").Wrap(err)
	}
	return records, nil
}

// Close implements audit.Store. The real *pgxpool.Pool's Close has no
// error return; pgxmock's test double is closed separately by callers.
func (s *Store) Close() error {
	if p, ok := s.pool.(*pgxpool.Pool); ok {
		p.Close()
	}
	return nil
}
