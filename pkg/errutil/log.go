// SPDX-License-Identifier: Apache-2.0

package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// Code enumerates the oops.Code values depedit attaches to errors at its
// CLI and library boundaries (internal/conll, internal/ruledef, internal/
// engine, internal/audit, cmd/depedit), so call sites and tests share one
// vocabulary instead of re-typing string literals.
type Code string

const (
	// CodeMalformedInput marks a CoNLL input file that could not be read
	// or parsed (internal/conll, cmd/depedit's file/glob handling).
	CodeMalformedInput Code = "MALFORMED_INPUT"
	// CodeMalformedRule marks a rule file or rule line that failed to
	// compile (internal/ruledef).
	CodeMalformedRule Code = "MALFORMED_RULE"
	// CodeMissingCaptureGroup marks an action referencing a $n
	// back-reference beyond the groups a binding actually collected
	// (internal/engine).
	CodeMissingCaptureGroup Code = "MISSING_CAPTURE_GROUP"
	// CodeConfigInvalid marks a malformed depedit.yaml settings file.
	CodeConfigInvalid Code = "CONFIG_INVALID"
	// CodeAuditConnectFailed marks a failure to open the audit ledger
	// (sqlite or postgres).
	CodeAuditConnectFailed Code = "AUDIT_CONNECT_FAILED"
	// CodeAuditRecordFailed marks a failure to persist one run's audit
	// record after retries were exhausted.
	CodeAuditRecordFailed Code = "AUDIT_RECORD_FAILED"
	// CodeAuditHistoryFailed marks a failure to query the audit ledger's
	// run history.
	CodeAuditHistoryFailed Code = "AUDIT_HISTORY_FAILED"
)

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code, context, and stacktrace.
// For standard errors, it logs the error string.
func LogError(logger *slog.Logger, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{
			"error", oopsErr.Error(),
		}
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		if st := oopsErr.Stacktrace(); st != "" {
			attrs = append(attrs, "stacktrace", st)
		}
		logger.Error(msg, attrs...)
	} else {
		logger.Error(msg, "error", err)
	}
}
