// SPDX-License-Identifier: Apache-2.0

// Package audit records one ledger row per input file processed by a
// depedit run (§2.5 of the full specification): which rule file was
// applied (by content fingerprint, not path), how many sentences and
// rules fired, and when. This supplements the batch/multi-file driver
// loop with a trail the original tool's directory-glob mode never kept.
package audit

import (
	"context"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// RunRecord is one row of the audit ledger.
type RunRecord struct {
	RunID         string
	RuleFileHash  string
	InputFile     string
	SentencesSeen int
	RulesFired    int
	Warnings      int
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Store persists and retrieves RunRecords. sqlite.Store is the default,
// local implementation; postgres.Store is an opt-in alternative for
// multi-host deployments.
type Store interface {
	// RecordRun appends one RunRecord to the ledger.
	RecordRun(ctx context.Context, rec RunRecord) error
	// History returns up to limit RunRecords for ruleFileHash, most
	// recent first.
	History(ctx context.Context, ruleFileHash string, limit int) ([]RunRecord, error)
	// Close releases any resources held by the store.
	Close() error
}

// FingerprintRuleFile returns the hex-encoded 256-bit blake2b digest of a
// rule file's contents, so identical rule files share one ledger key
// regardless of path or filename.
func FingerprintRuleFile(contents []byte) string {
	sum := blake2b.Sum256(contents)
	return hex.EncodeToString(sum[:])
}
