// SPDX-License-Identifier: Apache-2.0

package engine

import "github.com/nlplab/depedit-go/internal/ruledef"

// joinBindings implements the Binding Joiner (§4.3): it merges the
// per-relation pairwise seed bindings into every maximal tuple that
// assigns one Token per declared node index, is internally consistent, and
// covers every declared relation.
func joinBindings(tf *ruledef.Transformation, seedsByRel [][]*Binding) []*Binding {
	nodeCount := len(tf.Nodes)
	relCount := len(tf.Relations)

	var allSeeds []*Binding
	for _, s := range seedsByRel {
		allSeeds = append(allSeeds, s...)
	}

	// Step 1-2: seed bins, growing incrementally by attempting to merge
	// each new seed with every existing bin. Each seed is also kept as its
	// own standalone bin so later seeds may still combine with it.
	var bins []*Binding
	for _, seed := range allSeeds {
		next := make([]*Binding, 0, len(bins)+1)
		next = append(next, seed)
		for _, b := range bins {
			if compatible(b, seed) {
				next = append(next, merge(b, seed))
			}
		}
		bins = append(bins, next...)
	}

	// Step 3: collect structural candidates (full node coverage) and
	// opportunistically complete their relation sets by rescanning every
	// seed directly against the candidate's bound tokens. This subsumes
	// the separate "merge overlapping solutions" step of the design
	// algorithm: since every satisfiable relation is checked directly
	// here regardless of which merge path produced the candidate, two
	// full-node bins that only differ in which relations they'd already
	// accumulated converge to the same completed set.
	var solutions []*Binding
	for _, b := range bins {
		if len(b.NodeTokens) != nodeCount {
			continue
		}
		for relIdx, relSeeds := range seedsByRel {
			if b.Relations[relIdx] {
				continue
			}
			for _, seed := range relSeeds {
				if seedMatchesBinding(seed, b) {
					b.Relations[relIdx] = true
					break
				}
			}
		}
		if len(b.Relations) == relCount {
			solutions = append(solutions, b)
		}
	}

	// Step 5 (pruning already enforced by the relCount check above):
	// deduplicate solutions that assign identical tokens to every node,
	// which distinct merge paths can otherwise produce more than once.
	return dedupeSolutions(solutions)
}

// seedMatchesBinding reports whether every node index seed assigns is also
// present in b and mapped to the same Token.
func seedMatchesBinding(seed, b *Binding) bool {
	for idx, tok := range seed.NodeTokens {
		if b.NodeTokens[idx] != tok {
			return false
		}
	}
	return true
}

func dedupeSolutions(solutions []*Binding) []*Binding {
	var out []*Binding
	for _, s := range solutions {
		dup := false
		for _, existing := range out {
			if sameNodeTokens(s, existing) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}

// captureGroups resolves $n back-reference sources for a completed
// solution (§4.3): nodes are visited in ascending index order, and within
// each node every matched sub-definition contributes its one group (see
// DefinitionMatcher.Match), concatenated in clause order.
func captureGroups(tf *ruledef.Transformation, b *Binding) []string {
	var groups []string
	for i, dm := range tf.Nodes {
		nodeIdx := i + 1
		tok, ok := b.NodeTokens[nodeIdx]
		if !ok {
			continue
		}
		_, g := dm.Match(fieldGetter(tok))
		groups = append(groups, g...)
	}
	return groups
}
