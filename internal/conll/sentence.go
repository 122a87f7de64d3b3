// SPDX-License-Identifier: Apache-2.0

package conll

// Annotation is one `# key = value` sentence-level comment set by an
// `#S:key=value` action (§4.4).
type Annotation struct {
	Key   string
	Value string
}

// Sentence is an ordered sequence of Tokens plus the `# key = value`
// annotation comments attached to it by sentence-level actions.
//
// Annotations are kept in an ordered slice rather than a map: output must
// be byte-identical across runs (§8 invariant 1), and Go map iteration
// order is randomized, so a map here would make the rendered comment
// order nondeterministic.
type Sentence struct {
	Tokens      []*Token
	Annotations []Annotation
	SentNum     int

	// LeadingComments holds the original `#`-prefixed lines that preceded
	// this sentence's token rows in the input, verbatim and in order
	// (§6's "lines beginning with # are passthrough comments"). They are
	// distinct from Annotations, which actions add fresh (§4.4).
	LeadingComments []string

	// Offset is the running cumulative token count already emitted before
	// this sentence began (§4.5); Serialize subtracts it back out of every
	// non-super-token id/head to restore 1-based per-sentence numbering.
	Offset float64

	// TenColumn records whether this sentence's rows carried the 10-column
	// CoNLLU deps/misc fields, so Serialize can round-trip the same width.
	TenColumn bool
}

// NewSentence creates an empty Sentence with the given 1-based ordinal.
func NewSentence(sentNum int) *Sentence {
	return &Sentence{SentNum: sentNum}
}

// SetAnnotation sets sentence.annotations[key] = value, overwriting an
// existing entry in place or appending a new one, preserving first-write
// order for repeated overwrites.
func (s *Sentence) SetAnnotation(key, value string) {
	for i := range s.Annotations {
		if s.Annotations[i].Key == key {
			s.Annotations[i].Value = value
			return
		}
	}
	s.Annotations = append(s.Annotations, Annotation{Key: key, Value: value})
}

// Annotation returns the value set for key and whether it was present.
func (s *Sentence) Annotation(key string) (string, bool) {
	for _, a := range s.Annotations {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// AnnotationLines renders the sentence's annotations as `# key = value`
// comment lines in the order they were first set.
func (s *Sentence) AnnotationLines() []string {
	lines := make([]string, 0, len(s.Annotations))
	for _, a := range s.Annotations {
		lines = append(lines, "# "+a.Key+" = "+a.Value)
	}
	return lines
}
