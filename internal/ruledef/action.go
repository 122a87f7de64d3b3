// SPDX-License-Identifier: Apache-2.0

package ruledef

import (
	"regexp"
	"strconv"

	"github.com/samber/oops"

	"github.com/nlplab/depedit-go/pkg/errutil"
)

// ActionKind distinguishes the action forms of §3/§4.4.
type ActionKind int

const (
	ActionAssign ActionKind = iota
	ActionHeadRewire
	ActionSentAnnotate
	ActionLast
)

// Action is one compiled action clause. Value may still contain `$n`/`$nL`/
// `$nU` back-reference placeholders; those are expanded by the executor at
// binding-execution time, not at compile time.
type Action struct {
	Kind  ActionKind
	I, J  int    // node indices; J only for ActionHeadRewire
	Field Field  // ActionAssign target field
	Key   string // ActionSentAnnotate annotation key
	Value string // ActionAssign / ActionSentAnnotate raw value
}

var (
	// sentAnnotatePattern's value capture is restricted to an identifier,
	// matching the grammar of §4.1's `#S:ident=ident` form (the original's
	// validate() accepts the same `#S:[A-Za-z_]+=[A-Za-z_]+$`).
	sentAnnotatePattern = regexp.MustCompile(`^#S:([a-zA-Z_][a-zA-Z0-9_]*)=([a-zA-Z_][a-zA-Z0-9_]*)$`)
	headRewireAction    = regexp.MustCompile(`^#(\d+)>#(\d+)$`)
	assignPattern       = regexp.MustCompile(`^#(\d+):([a-zA-Z_][a-zA-Z0-9_]*)=(.*)$`)
)

// compileAction parses one action clause. Alias field names in assignment
// actions are resolved to their canonical Field here (§4.1 "action alias
// rewriting"), which is what makes canonical/alias spellings produce
// identical compiled rules (§8 invariant 4).
func compileAction(clause string) (*Action, error) {
	if clause == "last" {
		return &Action{Kind: ActionLast}, nil
	}

	if m := sentAnnotatePattern.FindStringSubmatch(clause); m != nil {
		return &Action{Kind: ActionSentAnnotate, Key: m[1], Value: m[2]}, nil
	}

	if m := headRewireAction.FindStringSubmatch(clause); m != nil {
		i, _ := strconv.Atoi(m[1])
		j, _ := strconv.Atoi(m[2])
		return &Action{Kind: ActionHeadRewire, I: i, J: j}, nil
	}

	if m := assignPattern.FindStringSubmatch(clause); m != nil {
		field, ok := LookupField(m[2])
		if !ok {
			return nil, oops.Code(string(errutil.CodeMalformedRule)).Errorf("unknown field %q in action %q", m[2], clause)
		}
		if !Assignable(field) {
			return nil, oops.Code(string(errutil.CodeMalformedRule)).Errorf("field %q is not assignable", m[2])
		}
		i, _ := strconv.Atoi(m[1])
		return &Action{Kind: ActionAssign, I: i, Field: field, Value: m[3]}, nil
	}

	return nil, oops.Code(string(errutil.CodeMalformedRule)).Errorf("malformed action clause %q", clause)
}
