// SPDX-License-Identifier: Apache-2.0

// Package depedit is the Driver (§4 "Driver", §6): it iterates sentences
// from an input stream, runs the compiled rule set against each via
// internal/engine, and serializes the result back out through
// internal/conll, tracking the running token-id offset and per-sentence
// column mode across the whole stream.
package depedit

import (
	"bufio"
	"fmt"
	"io"

	"github.com/nlplab/depedit-go/internal/conll"
	"github.com/nlplab/depedit-go/internal/engine"
	"github.com/nlplab/depedit-go/internal/ruledef"
)

// SentenceHooks is the subset of internal/hooks.Host's interface Process
// needs, accepted as an interface here so the driver package never
// imports the Lua runtime directly.
type SentenceHooks interface {
	BeforeSentence(sent *conll.Sentence) error
	AfterSentence(sent *conll.Sentence) error
}

// Options configures one Process run.
type Options struct {
	// Quiet suppresses MissingHead warnings (§7).
	Quiet bool
	// Warnf receives diagnostic warnings (MissingHead); nil discards them.
	Warnf func(format string, args ...any)

	// DocName, when non-empty, is emitted once as `# newdoc id = <name>`
	// before the first sentence (§6 "Optional driver-level decorations").
	DocName string
	// SentIDPrefix, when non-empty, sets a `sent_id = <prefix>-<n>`
	// annotation on each sentence after its rules and hooks have run, so
	// it is emitted with the annotation lines, before the sentence's
	// passthrough comment lines.
	SentIDPrefix string

	// Hooks, if set, runs before_sentence/after_sentence around each
	// sentence's rule run (§2.4).
	Hooks SentenceHooks
	// OnSentenceProcessed, if set, is called once per transformed
	// sentence, for metrics export.
	OnSentenceProcessed func()
	// OnRuleFired, if set, is called once per completed binding, with
	// the firing rule's source line, for metrics export.
	OnRuleFired func(line int)
	// OnWarning, if set, is called once per diagnostic warning emitted
	// (currently only "missing_head"), for metrics export.
	OnWarning func(kind string)
}

// Process reads CoNLL input from r, applies transformations sentence by
// sentence, and writes the transformed CoNLL output to w.
func Process(r io.Reader, w io.Writer, transformations []*ruledef.Transformation, opts Options) error {
	warnf := opts.Warnf
	if warnf == nil {
		warnf = func(string, ...any) {}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	bw := bufio.NewWriter(w)
	defer bw.Flush()

	if opts.DocName != "" {
		if _, err := fmt.Fprintf(bw, "# newdoc id = %s\n", opts.DocName); err != nil {
			return err
		}
	}

	var offset float64
	sentNum := 0

	var cur *conll.Sentence
	flush := func() error {
		if cur == nil {
			return nil
		}
		if len(cur.Tokens) == 0 {
			// A passthrough-only block (e.g. a leading document comment):
			// nothing to transform, just re-emit the comments as given.
			for _, line := range cur.LeadingComments {
				if _, err := bw.WriteString(line); err != nil {
					return err
				}
				if _, err := bw.WriteString("\n"); err != nil {
					return err
				}
			}
			if len(cur.LeadingComments) > 0 {
				if _, err := bw.WriteString("\n"); err != nil {
					return err
				}
			}
			cur = nil
			return nil
		}
		markLastPosition(cur)
		if opts.Hooks != nil {
			if err := opts.Hooks.BeforeSentence(cur); err != nil {
				return err
			}
		}
		if _, err := engine.RunWithStats(transformations, cur, opts.OnRuleFired); err != nil {
			return err
		}
		if opts.Hooks != nil {
			if err := opts.Hooks.AfterSentence(cur); err != nil {
				return err
			}
		}
		if opts.OnSentenceProcessed != nil {
			opts.OnSentenceProcessed()
		}
		if opts.SentIDPrefix != "" {
			cur.SetAnnotation("sent_id", fmt.Sprintf("%s-%d", opts.SentIDPrefix, cur.SentNum))
		}
		for _, line := range conll.Serialize(cur) {
			if _, err := bw.WriteString(line); err != nil {
				return err
			}
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
		offset += float64(countOffsetTokens(cur))
		cur = nil
		return nil
	}

	startSentence := func() {
		cur = conll.NewSentence(0)
		cur.Offset = offset
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch conll.ClassifyLine(line) {
		case conll.LineBlank:
			if err := flush(); err != nil {
				return err
			}
		case conll.LineComment:
			if cur == nil {
				startSentence()
			}
			cur.LeadingComments = append(cur.LeadingComments, line)
		case conll.LineToken:
			if cur == nil {
				startSentence()
			}
			tok, warning, is10Col, err := conll.ParseTokenLine(line, offset, opts.Quiet)
			if err != nil {
				return err
			}
			if warning != "" {
				warnf("%s", warning)
				if opts.OnWarning != nil {
					opts.OnWarning("missing_head")
				}
			}
			if len(cur.Tokens) == 0 {
				cur.TenColumn = is10Col
				sentNum++
				cur.SentNum = sentNum
			}
			tok.Sentence = cur
			cur.Tokens = append(cur.Tokens, tok)
		case conll.LineOther:
			// A non-tab, non-comment line inside a sentence terminates it
			// without raising an error (§7 MalformedInput).
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	return bw.Flush()
}

// markLastPosition sets the sentence's last non-super-token to
// PositionLast, mirroring how ParseTokenLine marks the first token's
// PositionFirst when its raw id is "1" (§3's position pseudo-field).
// Super-tokens are skipped; they are never marked first or last.
func markLastPosition(s *conll.Sentence) {
	for i := len(s.Tokens) - 1; i >= 0; i-- {
		if !s.Tokens[i].IsSuperTok {
			s.Tokens[i].Position = conll.PositionLast
			return
		}
	}
}

// countOffsetTokens counts the non-super-token rows in s, which is how
// many units the running cross-sentence id offset advances by (§4.5).
func countOffsetTokens(s *conll.Sentence) int {
	n := 0
	for _, t := range s.Tokens {
		if !t.IsSuperTok {
			n++
		}
	}
	return n
}

