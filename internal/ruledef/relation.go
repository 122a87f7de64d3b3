// SPDX-License-Identifier: Apache-2.0

package ruledef

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// RelationKind distinguishes the relation forms of §3/§4.2.
type RelationKind int

const (
	RelationNone RelationKind = iota
	RelationHeadChild
	RelationAdjacency
	RelationFieldEq
)

// Relation is one compiled relation clause.
type Relation struct {
	Kind RelationKind
	I, J int // 1-based node indices; J is unused for RelationNone

	// RelationAdjacency bounds: tokⱼ.id - tokᵢ.id must fall in [Min, Max].
	Min, Max int

	// RelationFieldEq field to compare.
	Field Field
}

var (
	opPattern    = `(?:\.\d+,\d+|\.\d+|\.|>)`
	chainPattern = regexp.MustCompile(`#(\d+)(` + opPattern + `)#(\d+)(` + opPattern + `)#(\d+)`)

	fieldEqPattern  = regexp.MustCompile(`^#(\d+):([a-zA-Z_][a-zA-Z0-9_]*)==#(\d+)$`)
	bareNodePattern = regexp.MustCompile(`^#(\d+)$`)
	headChildPat    = regexp.MustCompile(`^#(\d+)>#(\d+)$`)
	adjBarePattern  = regexp.MustCompile(`^#(\d+)\.#(\d+)$`)
	adjSinglePat    = regexp.MustCompile(`^#(\d+)\.(\d+)#(\d+)$`)
	adjRangePattern = regexp.MustCompile(`^#(\d+)\.(\d+),(\d+)#(\d+)$`)
)

// normalizeRelationsSegment applies the shorthand rewrites of §4.1 to the
// raw relations segment of a rule line, before it is split into individual
// clauses: `.*` becomes `.1,1000`, and any `#a OP1 #b OP2 #c` chain is
// rewritten to `#a OP1 #b; #b OP2 #c` repeatedly until no chain remains.
func normalizeRelationsSegment(segment string) string {
	segment = strings.ReplaceAll(segment, ".*", ".1,1000")

	for {
		loc := chainPattern.FindStringSubmatchIndex(segment)
		if loc == nil {
			return segment
		}
		a := segment[loc[2]:loc[3]]
		op1 := segment[loc[4]:loc[5]]
		b := segment[loc[6]:loc[7]]
		op2 := segment[loc[8]:loc[9]]
		c := segment[loc[10]:loc[11]]
		replacement := "#" + a + op1 + "#" + b + "; #" + b + op2 + "#" + c
		segment = segment[:loc[0]] + replacement + segment[loc[1]:]
	}
}

// compileRelation parses one already-normalized relation clause.
func compileRelation(clause string) (*Relation, error) {
	clause = strings.TrimSpace(clause)

	if clause == "none" {
		return &Relation{Kind: RelationNone, I: 1}, nil
	}

	// A bare `#n` relation clause is unary, equivalent to `none` but
	// naming which node it applies to explicitly (spec §8 scenario S1).
	if m := bareNodePattern.FindStringSubmatch(clause); m != nil {
		i, _ := strconv.Atoi(m[1])
		return &Relation{Kind: RelationNone, I: i}, nil
	}

	if m := fieldEqPattern.FindStringSubmatch(clause); m != nil {
		field, ok := LookupField(m[2])
		if !ok {
			return nil, oops.Code("MALFORMED_RULE").Errorf("unknown field %q in relation %q", m[2], clause)
		}
		i, _ := strconv.Atoi(m[1])
		j, _ := strconv.Atoi(m[3])
		return &Relation{Kind: RelationFieldEq, I: i, J: j, Field: field}, nil
	}

	if m := headChildPat.FindStringSubmatch(clause); m != nil {
		i, _ := strconv.Atoi(m[1])
		j, _ := strconv.Atoi(m[2])
		return &Relation{Kind: RelationHeadChild, I: i, J: j}, nil
	}

	if m := adjRangePattern.FindStringSubmatch(clause); m != nil {
		i, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		max, _ := strconv.Atoi(m[3])
		j, _ := strconv.Atoi(m[4])
		return &Relation{Kind: RelationAdjacency, I: i, J: j, Min: min, Max: max}, nil
	}

	if m := adjSinglePat.FindStringSubmatch(clause); m != nil {
		i, _ := strconv.Atoi(m[1])
		k, _ := strconv.Atoi(m[2])
		j, _ := strconv.Atoi(m[3])
		return &Relation{Kind: RelationAdjacency, I: i, J: j, Min: k, Max: k}, nil
	}

	if m := adjBarePattern.FindStringSubmatch(clause); m != nil {
		i, _ := strconv.Atoi(m[1])
		j, _ := strconv.Atoi(m[2])
		return &Relation{Kind: RelationAdjacency, I: i, J: j, Min: 1, Max: 1}, nil
	}

	return nil, oops.Code("MALFORMED_RULE").Errorf("malformed relation clause %q", clause)
}
