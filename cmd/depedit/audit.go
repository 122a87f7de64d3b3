// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"path/filepath"

	"github.com/samber/oops"

	"github.com/nlplab/depedit-go/internal/audit"
	"github.com/nlplab/depedit-go/internal/audit/postgres"
	"github.com/nlplab/depedit-go/internal/audit/sqlite"
	"github.com/nlplab/depedit-go/internal/xdg"
	"github.com/nlplab/depedit-go/pkg/errutil"
)

// openAuditStore opens the postgres ledger when dsn is set, else the
// local sqlite ledger at dbPath (or the XDG state-dir default).
func openAuditStore(ctx context.Context, dbPath, dsn string) (audit.Store, error) {
	if dsn != "" {
		store, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, oops.Code(string(errutil.CodeAuditConnectFailed)).With("dsn", dsn).Wrap(err)
		}
		return store, nil
	}

	if dbPath == "" {
		stateDir, err := xdg.StateDir()
		if err != nil {
			return nil, oops.Code(string(errutil.CodeAuditConnectFailed)).Wrap(err)
		}
		if err := xdg.EnsureDir(stateDir); err != nil {
			return nil, oops.Code(string(errutil.CodeAuditConnectFailed)).Wrap(err)
		}
		dbPath = filepath.Join(stateDir, "audit.db")
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, oops.Code(string(errutil.CodeAuditConnectFailed)).With("path", dbPath).Wrap(err)
	}
	return store, nil
}
