// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"strings"

	"github.com/samber/oops"

	"github.com/nlplab/depedit-go/internal/audit"
	"github.com/nlplab/depedit-go/internal/ruledef"
	"github.com/nlplab/depedit-go/internal/ruledef/jsonrules"
	"github.com/nlplab/depedit-go/pkg/errutil"
)

// loadRuleFile compiles rulePath into a transformation list and returns
// its content fingerprint for the audit ledger. A ".rules.json" suffix
// selects the JSON rule format (§2.3); anything else is the
// tab-delimited grammar.
func loadRuleFile(rulePath string) ([]*ruledef.Transformation, string, error) {
	data, err := os.ReadFile(rulePath) //nolint:gosec // rule path is an operator-supplied CLI flag
	if err != nil {
		return nil, "", oops.Code(string(errutil.CodeMalformedRule)).With("path", rulePath).Wrap(err)
	}

	fingerprint := audit.FingerprintRuleFile(data)

	if strings.HasSuffix(rulePath, ".rules.json") {
		transformations, err := jsonrules.Decode(strings.NewReader(string(data)))
		if err != nil {
			return nil, "", oops.Code(string(errutil.CodeMalformedRule)).With("path", rulePath).Wrap(err)
		}
		return transformations, fingerprint, nil
	}

	transformations, err := ruledef.CompileRuleFile(strings.NewReader(string(data)))
	if err != nil {
		return nil, "", oops.Code(string(errutil.CodeMalformedRule)).With("path", rulePath).Wrap(err)
	}
	return transformations, fingerprint, nil
}
