// SPDX-License-Identifier: Apache-2.0

package ruledef

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"
)

// clauseLexer tokenizes a single node clause such as
// `pos=/X/&text!=/b/`. Order matters: Bang must be tried before Eq would
// otherwise be reachable, and Regex's pattern allows a backslash-escaped
// slash so a literal "/" can appear inside the pattern.
var clauseLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Regex", Pattern: `/(?:\\.|[^/\\])*/`},
	{Name: "Bang", Pattern: `!`},
	{Name: "Eq", Pattern: `=`},
	{Name: "Amp", Pattern: `&`},
	{Name: "Field", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "whitespace", Pattern: `\s+`},
})

// criterionAST is one `field[!]=/pattern/` sub-clause as parsed from the
// node-clause text, before the pattern has been classified into exact,
// negative, regex, or always-true form.
type criterionAST struct {
	Field   string `parser:"@Field"`
	Negated bool   `parser:"@Bang?"`
	Eq      string `parser:"Eq"`
	Pattern string `parser:"@Regex"`
}

// nodeClauseAST is the full conjunction of sub-clauses joined by '&'.
type nodeClauseAST struct {
	Criteria []*criterionAST `parser:"@@ ('&' @@)*"`
}

var clauseParser = participle.MustBuild[nodeClauseAST](
	participle.Lexer(clauseLexer),
)

// metacharPattern matches any regexp metacharacter; used to decide whether
// an anchored pattern can be reduced to plain string equality (§4.1).
var metacharPattern = regexp.MustCompile(`[\\^$.|?*+()\[\]{}]`)

// MatchKind classifies how a Definition compares a field's value.
type MatchKind int

const (
	MatchAlways MatchKind = iota
	MatchExact
	MatchExactNeg
	MatchRegex
	MatchRegexNeg
)

// Definition is one compiled `field[!]=/pattern/` sub-clause (§3, §4.1).
type Definition struct {
	Field   Field
	Kind    MatchKind
	Literal string         // set when Kind is MatchExact/MatchExactNeg
	Regex   *regexp.Regexp // set when Kind is MatchRegex/MatchRegexNeg
}

// Matches reports whether value satisfies the definition, and — for a
// positive regex match — the submatch groups beyond the full match (index 0
// dropped), for later back-reference resolution (§4.3's "capture groups").
func (d *Definition) Matches(value string) (bool, []string) {
	switch d.Kind {
	case MatchAlways:
		return true, nil
	case MatchExact:
		return value == d.Literal, nil
	case MatchExactNeg:
		return value != d.Literal, nil
	case MatchRegex:
		m := d.Regex.FindStringSubmatch(value)
		if m == nil {
			return false, nil
		}
		if len(m) > 1 {
			return true, m[1:]
		}
		return true, nil
	case MatchRegexNeg:
		return !d.Regex.MatchString(value), nil
	default:
		panic(fmt.Sprintf("ruledef: unhandled match kind %d", d.Kind))
	}
}

// DefinitionMatcher is a compiled node clause: the conjunction of its
// Definitions, tested in order with short-circuit on first failure (§4.2).
type DefinitionMatcher struct {
	Definitions []*Definition
	Source      string // original clause text, for diagnostics
}

// Match evaluates every Definition against tok in order, short-circuiting
// on the first failing sub-clause. It returns one capture group per
// sub-definition that matched with a regex group, in clause order: only the
// FIRST group of a multi-group sub-definition's pattern contributes, the
// rest are discarded, mirroring the original's add_groups/Match.groups
// (depedit.py's DefinitionMatcher.match + add_groups, which append only
// group[0] of each sub-definition's match object).
func (m *DefinitionMatcher) Match(get func(Field) string) (bool, []string) {
	var groups []string
	for _, def := range m.Definitions {
		ok, g := def.Matches(get(def.Field))
		if !ok {
			return false, nil
		}
		if len(g) > 0 {
			groups = append(groups, g[0])
		}
	}
	return true, groups
}

// compileNodeClause parses and compiles one `;`-delimited node-clause
// segment (e.g. `pos=/X/&text=/b/`) into a DefinitionMatcher.
func compileNodeClause(clause string) (*DefinitionMatcher, error) {
	ast, err := clauseParser.ParseString("", clause)
	if err != nil {
		return nil, oops.Code("MALFORMED_RULE").With("clause", clause).Wrapf(err, "parsing node clause")
	}
	if len(ast.Criteria) == 0 {
		return nil, oops.Code("MALFORMED_RULE").With("clause", clause).Errorf("node clause has no criteria")
	}

	m := &DefinitionMatcher{Source: clause}
	for _, c := range ast.Criteria {
		def, err := compileCriterion(c)
		if err != nil {
			return nil, oops.Code("MALFORMED_RULE").With("clause", clause).Wrap(err)
		}
		m.Definitions = append(m.Definitions, def)
	}
	return m, nil
}

func compileCriterion(c *criterionAST) (*Definition, error) {
	field, ok := LookupField(c.Field)
	if !ok {
		return nil, oops.Code("MALFORMED_RULE").Errorf("unknown field %q", c.Field)
	}

	raw := strings.TrimSuffix(strings.TrimPrefix(c.Pattern, "/"), "/")
	raw = unescapeSlash(raw)

	if field == FieldPosition {
		if !positionPattern.MatchString(raw) {
			return nil, oops.Code("MALFORMED_RULE").Errorf("position pattern %q must match first|last|mid", raw)
		}
	}

	anchored := anchor(raw)

	if anchored == "^.*$" && !c.Negated {
		return &Definition{Field: field, Kind: MatchAlways}, nil
	}

	if !metacharPattern.MatchString(raw) {
		kind := MatchExact
		if c.Negated {
			kind = MatchExactNeg
		}
		return &Definition{Field: field, Kind: kind, Literal: raw}, nil
	}

	re, err := regexp.Compile(anchored)
	if err != nil {
		return nil, oops.Code("MALFORMED_RULE").Wrapf(err, "compiling pattern %q", anchored)
	}
	kind := MatchRegex
	if c.Negated {
		kind = MatchRegexNeg
	}
	return &Definition{Field: field, Kind: kind, Regex: re}, nil
}

var positionPattern = regexp.MustCompile(`^(first|last|mid)$`)

// anchor inserts ^ and/or $ if the pattern does not already start/end with
// one (§4.1).
func anchor(pattern string) string {
	out := pattern
	if !strings.HasPrefix(out, "^") {
		out = "^" + out
	}
	if !strings.HasSuffix(out, "$") {
		out = out + "$"
	}
	return out
}

// unescapeSlash turns a backslash-escaped "/" from inside a /.../ pattern
// back into a literal "/"; other backslash escapes are left untouched for
// regexp.Compile to interpret.
func unescapeSlash(s string) string {
	return strings.ReplaceAll(s, `\/`, `/`)
}
