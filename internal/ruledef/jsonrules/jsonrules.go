// SPDX-License-Identifier: Apache-2.0

// Package jsonrules accepts an alternative, machine-generated rule-file
// format (*.rules.json): a JSON object whose "rules" array holds
// {nodes, relations, actions} triples mirroring the tab-delimited grammar
// one-for-one (§2.3 of the full specification). It does not change
// matching semantics; every decoded rule compiles through
// ruledef.AddTransformation, which shares its validation and compilation
// with the CompileLine path used by hand-authored tab-delimited files.
package jsonrules

import (
	"encoding/json"
	"io"

	"github.com/samber/oops"

	"github.com/nlplab/depedit-go/internal/ruledef"
	"github.com/nlplab/depedit-go/internal/version"
)

// Rule is one JSON-encoded transformation. Nodes, Relations, and Actions
// hold the same clause strings that would appear, semicolon-separated,
// in a tab-delimited rule line's three segments.
type Rule struct {
	// Nodes lists the node clauses in declaration order, e.g. "pos=/VERB/".
	Nodes []string `json:"nodes" jsonschema:"minItems=1,description=Node clauses in declaration order"`
	// Relations lists the relation clauses binding node indices, e.g. "#1>#2".
	Relations []string `json:"relations" jsonschema:"minItems=1,description=Relation clauses binding node indices"`
	// Actions lists the action clauses applied to a matched binding, e.g. "#1:func=OBJ".
	Actions []string `json:"actions" jsonschema:"minItems=1,description=Action clauses applied on match"`
}

// Document is the top-level shape of a *.rules.json file.
type Document struct {
	// DepeditVersion, if set, is a semver constraint enforced the same way
	// as the tab-delimited format's `; depedit-version` directive.
	DepeditVersion string `json:"depedit_version,omitempty" jsonschema:"description=Semver constraint this rule set requires"`
	// Rules is the ordered list of transformations.
	Rules []Rule `json:"rules" jsonschema:"minItems=1"`
}

// Decode parses and compiles a *.rules.json document from r into
// Transformations, in file order. Node index 1-based line numbers are
// synthesized from the rule's position in the array (1-based) for error
// reporting, since JSON carries no native line concept.
func Decode(r io.Reader) ([]*ruledef.Transformation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, oops.Code("MALFORMED_INPUT").Wrapf(err, "reading JSON rule document")
	}

	if err := Validate(data); err != nil {
		return nil, oops.Code("MALFORMED_RULE").Wrap(err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, oops.Code("MALFORMED_RULE").Wrapf(err, "parsing JSON rule document")
	}

	if doc.DepeditVersion != "" {
		if err := version.CheckConstraint(doc.DepeditVersion); err != nil {
			return nil, oops.Code("MALFORMED_RULE").Wrap(err)
		}
	}

	transformations := make([]*ruledef.Transformation, 0, len(doc.Rules))
	for i, rule := range doc.Rules {
		lineNum := i + 1
		t, err := ruledef.AddTransformation(rule.Nodes, rule.Relations, rule.Actions, lineNum)
		if err != nil {
			return nil, oops.Code("MALFORMED_RULE").With("rule_index", lineNum).Wrap(err)
		}
		transformations = append(transformations, t)
	}
	return transformations, nil
}
