// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nlplab/depedit-go/internal/conll"
	"github.com/nlplab/depedit-go/internal/ruledef"
	"github.com/nlplab/depedit-go/pkg/errutil"
	"github.com/samber/oops"
)

var backrefPattern = regexp.MustCompile(`\$(\d+)([LU]?)`)

// expandBackrefs resolves `$n`/`$nL`/`$nU` placeholders in value against
// groups, §4.4's "replace each with groups[n-1]". An out-of-range reference
// is a fatal MissingCaptureGroup error (§7).
func expandBackrefs(value string, groups []string) (string, error) {
	var outerErr error
	expanded := backrefPattern.ReplaceAllStringFunc(value, func(m string) string {
		sub := backrefPattern.FindStringSubmatch(m)
		n, _ := strconv.Atoi(sub[1])
		if n < 1 || n > len(groups) {
			if outerErr == nil {
				outerErr = oops.Code(string(errutil.CodeMissingCaptureGroup)).
					With("reference", n).
					Errorf("action references capture group $%d but only %d were collected", n, len(groups))
			}
			return m
		}
		g := groups[n-1]
		switch sub[2] {
		case "L":
			return strings.ToLower(g)
		case "U":
			return strings.ToUpper(g)
		default:
			return g
		}
	})
	if outerErr != nil {
		return "", outerErr
	}
	return expanded, nil
}

// executeBinding runs tf's actions, in declaration order, against one
// completed binding (§4.4). stop reports whether `last` was encountered,
// which the caller must treat as an immediate halt to all further rule
// processing for the current sentence (§9's "global-state last").
func executeBinding(tf *ruledef.Transformation, b *Binding) (stop bool, err error) {
	groups := captureGroups(tf, b)

	for _, act := range tf.Actions {
		switch act.Kind {
		case ruledef.ActionLast:
			return true, nil

		case ruledef.ActionSentAnnotate:
			value, err := expandBackrefs(act.Value, groups)
			if err != nil {
				return false, err
			}
			sent := anyBoundSentence(b)
			if sent != nil {
				sent.SetAnnotation(act.Key, value)
			}

		case ruledef.ActionAssign:
			value, err := expandBackrefs(act.Value, groups)
			if err != nil {
				return false, err
			}
			tok := b.NodeTokens[act.I]
			ruledef.Set(tok, act.Field, value)

		case ruledef.ActionHeadRewire:
			ti := b.NodeTokens[act.I]
			tj := b.NodeTokens[act.J]
			if ti != tj {
				tj.Head = ti.ID
			}
		}
	}
	return false, nil
}

// anyBoundSentence returns the owning Sentence of any token in the
// binding; all bound tokens share the same sentence by construction, since
// a single matching pass only ever runs over one sentence's tokens.
func anyBoundSentence(b *Binding) *conll.Sentence {
	for _, tok := range b.NodeTokens {
		if tok.Sentence != nil {
			return tok.Sentence
		}
	}
	return nil
}
