// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"math"
	"strconv"

	"github.com/nlplab/depedit-go/internal/conll"
	"github.com/nlplab/depedit-go/internal/ruledef"
)

// candidate is one Token that satisfied a node's DefinitionMatcher, paired
// with the capture-group tuple that match produced (§4.2).
type candidate struct {
	tok    *conll.Token
	groups []string
}

func fieldGetter(tok *conll.Token) func(ruledef.Field) string {
	return func(f ruledef.Field) string { return ruledef.Get(tok, f) }
}

// collectCandidates tests every non-super-token in the sentence against
// each node's DefinitionMatcher (§4.2). Super-tokens are never offered as
// match candidates (§3).
func collectCandidates(tf *ruledef.Transformation, sent *conll.Sentence) map[int][]candidate {
	pools := make(map[int][]candidate, len(tf.Nodes))
	for i, dm := range tf.Nodes {
		nodeIdx := i + 1
		var pool []candidate
		for _, tok := range sent.Tokens {
			if tok.IsSuperTok {
				continue
			}
			ok, groups := dm.Match(fieldGetter(tok))
			if ok {
				pool = append(pool, candidate{tok: tok, groups: groups})
			}
		}
		pools[nodeIdx] = pool
	}
	return pools
}

// seedsByRelation evaluates each relation of tf against the current
// candidate pools in declaration order, pruning unused candidates from the
// pools after each relation so later relations over the same node index
// only see survivors (§4.2).
func seedsByRelation(tf *ruledef.Transformation, pools map[int][]candidate) [][]*Binding {
	seeds := make([][]*Binding, len(tf.Relations))
	for relIdx, rel := range tf.Relations {
		seeds[relIdx] = evaluateRelation(relIdx, rel, pools)
	}
	return seeds
}

func evaluateRelation(relIdx int, rel *ruledef.Relation, pools map[int][]candidate) []*Binding {
	if rel.Kind == ruledef.RelationNone {
		var out []*Binding
		for _, c := range pools[rel.I] {
			b := newBinding()
			b.NodeTokens[rel.I] = c.tok
			b.Relations[relIdx] = true
			out = append(out, b)
		}
		return out
	}

	var out []*Binding
	usedI := map[*conll.Token]bool{}
	usedJ := map[*conll.Token]bool{}

	for _, ci := range pools[rel.I] {
		for _, cj := range pools[rel.J] {
			if !relationHolds(rel, ci.tok, cj.tok) {
				continue
			}
			b := newBinding()
			b.NodeTokens[rel.I] = ci.tok
			b.NodeTokens[rel.J] = cj.tok
			b.Relations[relIdx] = true
			out = append(out, b)
			usedI[ci.tok] = true
			usedJ[cj.tok] = true
		}
	}

	pools[rel.I] = filterUsed(pools[rel.I], usedI)
	pools[rel.J] = filterUsed(pools[rel.J], usedJ)
	return out
}

func filterUsed(pool []candidate, used map[*conll.Token]bool) []candidate {
	out := pool[:0:0]
	for _, c := range pool {
		if used[c.tok] {
			out = append(out, c)
		}
	}
	return out
}

// relationHolds evaluates the structural predicate of rel between the two
// candidate tokens (§4.2's relation table).
func relationHolds(rel *ruledef.Relation, ti, tj *conll.Token) bool {
	switch rel.Kind {
	case ruledef.RelationHeadChild:
		headJ, ok1 := toInt(tj.Head)
		idI, ok2 := toInt(ti.ID)
		return ok1 && ok2 && headJ == idI
	case ruledef.RelationAdjacency:
		idI, ok1 := toInt(ti.ID)
		idJ, ok2 := toInt(tj.ID)
		if !ok1 || !ok2 {
			return false
		}
		diff := idJ - idI
		return diff >= rel.Min && diff <= rel.Max
	case ruledef.RelationFieldEq:
		return ruledef.Get(ti, rel.Field) == ruledef.Get(tj, rel.Field)
	default:
		return false
	}
}

// toInt coerces a numeric id/head string to an integer by truncation,
// mirroring the source tool's int(float(x)) coercion (§4.2).
func toInt(s string) (int, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(math.Trunc(v)), true
}
