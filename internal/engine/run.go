// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/nlplab/depedit-go/internal/conll"
	"github.com/nlplab/depedit-go/internal/ruledef"
)

// Run applies every transformation, in declaration order, to sent: for
// each rule it finds all complete bindings and executes the rule's
// actions against each, in a stable (insertion) order (§4.3, §4.4). It
// stops immediately, returning early, once any binding's actions include
// `last` (§9).
func Run(transformations []*ruledef.Transformation, sent *conll.Sentence) error {
	_, err := RunWithStats(transformations, sent, nil)
	return err
}

// Stats reports how many times each rule fired (by source line) during
// one RunWithStats call, so a caller can export rule-level metrics
// without Run/runTransformation tracking anything beyond its own
// matching and joining work.
type Stats struct {
	// FiredByLine counts completed bindings per rule source line; being a
	// map, it keeps no record of the order in which rules fired.
	FiredByLine map[int]int
}

// RunWithStats behaves exactly like Run but also returns firing counts
// per rule source line, purely observational (§9's "last" early-stop
// semantics are unchanged; a rule that fires zero times before a stop
// still has no entry).
func RunWithStats(transformations []*ruledef.Transformation, sent *conll.Sentence, onFire func(line int)) (Stats, error) {
	stats := Stats{FiredByLine: make(map[int]int)}
	for _, tf := range transformations {
		stop, err := runTransformation(tf, sent, func() {
			stats.FiredByLine[tf.Line]++
			if onFire != nil {
				onFire(tf.Line)
			}
		})
		if err != nil {
			return stats, err
		}
		if stop {
			return stats, nil
		}
	}
	return stats, nil
}

func runTransformation(tf *ruledef.Transformation, sent *conll.Sentence, onFire func()) (stop bool, err error) {
	pools := collectCandidates(tf, sent)
	seedsByRel := seedsByRelation(tf, pools)
	solutions := joinBindings(tf, seedsByRel)

	for _, b := range solutions {
		stop, err := executeBinding(tf, b)
		if err != nil {
			return false, err
		}
		if onFire != nil {
			onFire()
		}
		if stop {
			return true, nil
		}
	}
	return false, nil
}
