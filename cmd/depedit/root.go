// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/nlplab/depedit-go/internal/version"
)

// NewRootCmd creates the root command for the depedit CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "depedit <file-pattern>",
		Short:   "Rewrite CoNLL-style dependency-parsed sentences with a rule file",
		Long:    `depedit rewrites CoNLL-style dependency-parsed sentences according to a rule file describing node, relation, and action clauses.`,
		Version: version.Current,
	}

	cmd.AddCommand(newRunCmd())
	return cmd
}
