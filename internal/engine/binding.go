// SPDX-License-Identifier: Apache-2.0

// Package engine implements the Matcher, Binding Joiner, and Action
// Executor (§4.2-§4.4): finding every token tuple in a sentence that
// satisfies a rule's node definitions and relations, then applying the
// rule's actions to each.
package engine

import "github.com/nlplab/depedit-go/internal/conll"

// Binding is a partial (during joining) or complete (once joined) map from
// a rule's 1-based node index to the Token bound to it, together with the
// set of relation indices already known to hold among its bound tokens
// (§3, §4.3).
type Binding struct {
	NodeTokens map[int]*conll.Token
	Relations  map[int]bool
}

func newBinding() *Binding {
	return &Binding{NodeTokens: map[int]*conll.Token{}, Relations: map[int]bool{}}
}

func (b *Binding) clone() *Binding {
	c := newBinding()
	for k, v := range b.NodeTokens {
		c.NodeTokens[k] = v
	}
	for k, v := range b.Relations {
		c.Relations[k] = v
	}
	return c
}

// compatible reports whether a and b can be merged: every node index they
// share must already agree on the same Token (internal consistency, §4.3's
// stated goal), at least one index must be shared (overlap), and at least
// one index must be present in only one of them (progress) so the merge is
// not a no-op.
func compatible(a, b *Binding) bool {
	sharedCount := 0
	for idx, tokA := range a.NodeTokens {
		if tokB, ok := b.NodeTokens[idx]; ok {
			if tokA != tokB {
				return false
			}
			sharedCount++
		}
	}
	if sharedCount == 0 {
		return false
	}
	if sharedCount == len(a.NodeTokens) && sharedCount == len(b.NodeTokens) {
		return false // identical node sets: no progress
	}
	return true
}

// merge unions a and b's node mappings and relation sets. Callers must
// have already established compatible(a, b).
func merge(a, b *Binding) *Binding {
	out := a.clone()
	for idx, tok := range b.NodeTokens {
		out.NodeTokens[idx] = tok
	}
	for idx := range b.Relations {
		out.Relations[idx] = true
	}
	return out
}

// sameNodeTokens reports whether two bindings assign identical tokens to
// every node index either of them covers, used to deduplicate solutions
// reached via different merge paths.
func sameNodeTokens(a, b *Binding) bool {
	if len(a.NodeTokens) != len(b.NodeTokens) {
		return false
	}
	for idx, tok := range a.NodeTokens {
		if b.NodeTokens[idx] != tok {
			return false
		}
	}
	return true
}
