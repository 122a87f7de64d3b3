// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	cryptorand "crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/nlplab/depedit-go/internal/audit"
	"github.com/nlplab/depedit-go/internal/depedit"
	"github.com/nlplab/depedit-go/internal/hooks"
	"github.com/nlplab/depedit-go/internal/logging"
	"github.com/nlplab/depedit-go/internal/observability"
	"github.com/nlplab/depedit-go/internal/ruledef"
	"github.com/nlplab/depedit-go/internal/version"
	"github.com/nlplab/depedit-go/pkg/errutil"
)

// runConfig holds the run command's merged flag/settings-file values.
type runConfig struct {
	ruleFile    string
	docname     bool
	sentID      bool
	quiet       bool
	outdir      string
	extension   string
	infix       string
	logFormat   string
	metricsAddr string
	auditDB     string
	auditDSN    string
	hookPath    string
	settings    string
}

const defaultInfix = ".depedit"

func newRunCmd() *cobra.Command {
	cfg := &runConfig{}

	cmd := &cobra.Command{
		Use:   "run <file-pattern>",
		Short: "Apply a rule file to one or more CoNLL input files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args[0], cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.ruleFile, "config", "c", "config.ini", "rule file defining transformations")
	flags.BoolVarP(&cfg.docname, "docname", "d", false, "begin output with # newdoc id = ...")
	flags.BoolVarP(&cfg.sentID, "sent-id", "s", false, "add running sentence ID comments")
	flags.BoolVarP(&cfg.quiet, "quiet", "q", false, "do not emit diagnostic warnings")
	flags.StringVarP(&cfg.outdir, "outdir", "o", "", "output directory in batch mode")
	flags.StringVarP(&cfg.extension, "extension", "e", "", "extension for output files in batch mode")
	flags.StringVarP(&cfg.infix, "infix", "i", defaultInfix, "infix to denote edited files in batch mode")
	flags.StringVar(&cfg.logFormat, "log-format", "json", "log format (json or text)")
	flags.StringVar(&cfg.metricsAddr, "metrics-addr", "", "metrics/health HTTP address (empty = disabled)")
	flags.StringVar(&cfg.auditDB, "audit-db", "", "sqlite audit ledger path (default: XDG state dir)")
	flags.StringVar(&cfg.auditDSN, "audit-dsn", "", "postgres DSN for the audit ledger (opt-in, overrides --audit-db)")
	flags.StringVar(&cfg.hookPath, "hook", "", "optional Lua hook script")
	flags.StringVar(&cfg.settings, "settings", "", "depedit.yaml settings file (default: XDG config dir)")

	return cmd
}

// applySettings overwrites cfg's fields with the merged koanf view, so a
// depedit.yaml value applies whenever its flag was left at the default.
func applySettings(k *koanf.Koanf, cfg *runConfig) {
	cfg.ruleFile = k.String("config")
	cfg.docname = k.Bool("docname")
	cfg.sentID = k.Bool("sent-id")
	cfg.quiet = k.Bool("quiet")
	cfg.outdir = k.String("outdir")
	cfg.extension = k.String("extension")
	cfg.infix = k.String("infix")
	cfg.logFormat = k.String("log-format")
	cfg.metricsAddr = k.String("metrics-addr")
	cfg.auditDB = k.String("audit-db")
	cfg.auditDSN = k.String("audit-dsn")
	cfg.hookPath = k.String("hook")
}

func runRun(cmd *cobra.Command, pattern string, cfg *runConfig) error {
	k, err := loadSettings(cfg.settings, cmd.Flags())
	if err != nil {
		return err
	}
	applySettings(k, cfg)

	runID := newRunID()
	logging.SetDefault("depedit", version.Current, runID, cfg.logFormat)
	logger := slog.Default()

	if cfg.extension != "" {
		cfg.extension = strings.TrimPrefix(cfg.extension, ".")
	}

	transformations, ruleFileHash, err := loadRuleFile(cfg.ruleFile)
	if err != nil {
		errutil.LogError(logger, "failed to load rule file", err)
		return err
	}

	files, err := expandPattern(pattern)
	if err != nil {
		errutil.LogError(logger, "failed to expand input pattern", err)
		return err
	}

	ctx := cmd.Context()

	var hookHost *hooks.Host
	if cfg.hookPath != "" {
		hookHost, err = hooks.Load(cfg.hookPath)
		if err != nil {
			errutil.LogError(logger, "failed to load hook script", err)
			return err
		}
	}

	auditStore, err := openAuditStore(ctx, cfg.auditDB, cfg.auditDSN)
	if err != nil {
		errutil.LogError(logger, "failed to open audit store", err)
		return err
	}
	defer func() {
		if closeErr := auditStore.Close(); closeErr != nil {
			logger.Warn("error closing audit store", "error", closeErr)
		}
	}()

	var obsServer *observability.Server
	if cfg.metricsAddr != "" {
		obsServer = observability.NewServer(cfg.metricsAddr, func() bool { return true })
		errCh, startErr := obsServer.Start()
		if startErr != nil {
			errutil.LogError(logger, "failed to start observability server", startErr)
			return startErr
		}
		go func() {
			if serveErr, ok := <-errCh; ok && serveErr != nil {
				logger.Error("observability server error", "error", serveErr)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
				logger.Warn("error stopping observability server", "error", stopErr)
			}
		}()
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	logger.Info("depedit run starting",
		"rule_file", cfg.ruleFile,
		"rule_file_hash", ruleFileHash,
		"pattern", pattern,
		"file_count", len(files),
	)

	for _, file := range files {
		if err := processFile(ctx, file, len(files), transformations, ruleFileHash, hookHost, obsServer, auditStore, runID, cfg); err != nil {
			errutil.LogError(logger, "failed to process file", err)
			return err
		}
	}

	logger.Info("depedit run complete", "file_count", len(files))
	return nil
}

// docNameFor returns the docname/sent_id-prefix values for file. Each
// value is the file's basename with its extension stripped when its own
// flag (docname, sent-id) is set, and empty otherwise; one flag never
// turns on the other decoration.
func docNameFor(cfg *runConfig, file string) (docName, sentIDPrefix string) {
	if !cfg.docname && !cfg.sentID {
		return "", ""
	}
	base := filepath.Base(file)
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		base = base[:idx]
	}
	if cfg.docname {
		docName = base
	}
	if cfg.sentID {
		sentIDPrefix = base
	}
	return docName, sentIDPrefix
}

// outputPathFor builds a batch-mode output path: <outdir>/<basename><infix>.<extension>.
func outputPathFor(cfg *runConfig, file string) string {
	dir := cfg.outdir
	if dir != "" && !strings.HasSuffix(dir, string(os.PathSeparator)) {
		dir += string(os.PathSeparator)
	}
	base := filepath.Base(file)
	outname := dir + base

	ext := cfg.extension
	if idx := strings.LastIndex(outname, "."); idx >= 0 {
		if ext == "" {
			ext = outname[idx+1:]
		}
		outname = outname[:idx] + cfg.infix + "." + ext
	} else if ext != "" {
		outname += cfg.infix + "." + ext
	} else {
		outname += cfg.infix
	}
	return outname
}

func processFile(
	ctx context.Context,
	file string,
	fileCount int,
	transformations []*ruledef.Transformation,
	ruleFileHash string,
	hookHost *hooks.Host,
	obsServer *observability.Server,
	auditStore audit.Store,
	runID string,
	cfg *runConfig,
) error {
	in, err := os.Open(file) //nolint:gosec // file comes from an operator-supplied glob pattern
	if err != nil {
		return oops.Code(string(errutil.CodeMalformedInput)).With("file", file).Wrap(err)
	}
	defer in.Close()

	var out *os.File
	if fileCount == 1 {
		out = os.Stdout
	} else {
		outPath := outputPathFor(cfg, file)
		out, err = os.Create(outPath) //nolint:gosec // output path is derived from operator-supplied flags
		if err != nil {
			return oops.Code(string(errutil.CodeMalformedInput)).With("file", outPath).Wrap(err)
		}
		defer out.Close()
	}

	docName, sentIDPrefix := docNameFor(cfg, file)

	opts := depedit.Options{
		Quiet:        cfg.quiet,
		DocName:      docName,
		SentIDPrefix: sentIDPrefix,
		Warnf: func(format string, args ...any) {
			slog.Default().Warn(fmt.Sprintf(format, args...))
		},
	}
	if hookHost != nil {
		opts.Hooks = hookHost
	}

	var sentences, rulesFired, warnings int
	opts.OnSentenceProcessed = func() {
		sentences++
		if obsServer != nil {
			obsServer.Metrics().SentencesProcessedTotal.Inc()
		}
	}
	opts.OnRuleFired = func(line int) {
		rulesFired++
		if obsServer != nil {
			obsServer.Metrics().RulesFiredTotal.WithLabelValues(fmt.Sprintf("%d", line)).Inc()
		}
	}
	opts.OnWarning = func(kind string) {
		warnings++
		if obsServer != nil {
			obsServer.Metrics().WarningsTotal.WithLabelValues(kind).Inc()
		}
	}

	startedAt := time.Now()
	if err := depedit.Process(in, out, transformations, opts); err != nil {
		return oops.Code(string(errutil.CodeMalformedInput)).With("file", file).Wrap(err)
	}
	finishedAt := time.Now()

	return auditStore.RecordRun(ctx, audit.RunRecord{
		RunID:         runID,
		RuleFileHash:  ruleFileHash,
		InputFile:     file,
		SentencesSeen: sentences,
		RulesFired:    rulesFired,
		Warnings:      warnings,
		StartedAt:     startedAt,
		FinishedAt:    finishedAt,
	})
}

// newRunID mints a ULID run identity, lexicographically sortable by
// creation time, used to correlate every log line and audit-ledger row
// for one invocation.
func newRunID() string {
	entropy := ulid.Monotonic(cryptorand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
