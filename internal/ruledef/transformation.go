// SPDX-License-Identifier: Apache-2.0

package ruledef

import (
	"strings"

	"github.com/samber/oops"
)

// Transformation is one compiled rule: Nodes, Relations and Actions in
// declaration order, plus the source line number for error reporting (§3).
type Transformation struct {
	Nodes     []*DefinitionMatcher
	Relations []*Relation
	Actions   []*Action
	Line      int
}

// CompileLine compiles one raw rule-file line (already known not to be
// blank or a comment) into a Transformation. line must contain exactly two
// tab characters separating the nodes, relations, and actions segments
// (§4.1, §6); anything else is a MalformedRule.
func CompileLine(line string, lineNum int) (*Transformation, error) {
	segs := strings.Split(line, "\t")
	if len(segs) != 3 {
		return nil, oops.Code("MALFORMED_RULE").With("line", lineNum).
			Errorf("rule line must have exactly two tab-separated segments, got %d", len(segs)-1)
	}

	nodeStrs := splitTopLevel(segs[0], ';')
	relationStrs := splitTopLevel(normalizeRelationsSegment(segs[1]), ';')
	actionStrs := splitTopLevel(segs[2], ';')

	return buildTransformation(nodeStrs, relationStrs, actionStrs, lineNum)
}

// AddTransformation builds a Transformation from already-segmented node,
// relation, and action clause lists, as a rule file compiler would
// construct a rule programmatically. It joins the actual actions slice
// given to it — the source tool's list-mode entry point instead
// concatenated the literal string "actions" here, a latent bug (§9); this
// implementation does not reproduce it.
func AddTransformation(nodeStrs, relationStrs, actionStrs []string, lineNum int) (*Transformation, error) {
	normalizedRelations := make([]string, 0, len(relationStrs))
	for _, r := range relationStrs {
		normalizedRelations = append(normalizedRelations, splitTopLevel(normalizeRelationsSegment(r), ';')...)
	}
	return buildTransformation(nodeStrs, normalizedRelations, actionStrs, lineNum)
}

func buildTransformation(nodeStrs, relationStrs, actionStrs []string, lineNum int) (*Transformation, error) {
	t := &Transformation{Line: lineNum}

	for _, ns := range nodeStrs {
		dm, err := compileNodeClause(strings.TrimSpace(ns))
		if err != nil {
			return nil, oops.With("line", lineNum).Wrap(err)
		}
		t.Nodes = append(t.Nodes, dm)
	}

	for _, rs := range relationStrs {
		rel, err := compileRelation(rs)
		if err != nil {
			return nil, oops.With("line", lineNum).Wrap(err)
		}
		t.Relations = append(t.Relations, rel)
	}

	for _, as := range actionStrs {
		act, err := compileAction(strings.TrimSpace(as))
		if err != nil {
			return nil, oops.With("line", lineNum).Wrap(err)
		}
		t.Actions = append(t.Actions, act)
	}

	if err := validateTransformation(t); err != nil {
		return nil, err
	}

	return t, nil
}

// validateTransformation checks node indices referenced by relations and
// actions are within range of the declared Nodes (§4.1 Validation).
func validateTransformation(t *Transformation) error {
	n := len(t.Nodes)
	inRange := func(i int) bool { return i >= 1 && i <= n }

	for _, r := range t.Relations {
		if r.Kind == RelationNone {
			if !inRange(r.I) {
				return oops.Code("MALFORMED_RULE").With("line", t.Line).
					Errorf("relation references node index out of range [1,%d]", n)
			}
			continue
		}
		if !inRange(r.I) || !inRange(r.J) {
			return oops.Code("MALFORMED_RULE").With("line", t.Line).
				Errorf("relation references node index out of range [1,%d]", n)
		}
	}
	for _, a := range t.Actions {
		switch a.Kind {
		case ActionAssign:
			if !inRange(a.I) {
				return oops.Code("MALFORMED_RULE").With("line", t.Line).
					Errorf("action references node index out of range [1,%d]", n)
			}
		case ActionHeadRewire:
			if !inRange(a.I) || !inRange(a.J) {
				return oops.Code("MALFORMED_RULE").With("line", t.Line).
					Errorf("action references node index out of range [1,%d]", n)
			}
		}
	}
	return nil
}
