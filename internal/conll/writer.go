// SPDX-License-Identifier: Apache-2.0

package conll

import "strconv"

// Serialize renders a Sentence back into CoNLL rows, undoing the id/head
// offset applied at read time and restoring 1-based per-sentence numbering
// (§4.5 invariant 3). Super-token rows pass their id and head through
// unchanged (invariant 2); ellipsis tokens always serialize head as "_".
//
// The annotation comment lines, if any, are returned first, then the
// sentence's passthrough comment lines, followed by one row per token in
// sentence order.
func Serialize(s *Sentence) []string {
	lines := make([]string, 0, len(s.Annotations)+len(s.LeadingComments)+len(s.Tokens))
	lines = append(lines, s.AnnotationLines()...)
	lines = append(lines, s.LeadingComments...)

	for _, tok := range s.Tokens {
		lines = append(lines, serializeToken(tok, s.Offset, s.TenColumn))
	}
	return lines
}

func serializeToken(tok *Token, offset float64, tenColumn bool) string {
	var id, head string
	if tok.IsSuperTok {
		id = tok.ID
		head = tok.Head
	} else {
		id = deoffsetID(tok.ID, offset)
		if tok.IsEllipsis() {
			head = "_"
		} else {
			head = deoffsetID(tok.Head, offset)
		}
	}

	cols := []string{id, tok.Text, tok.Lemma, tok.POS, tok.CPOS, tok.Morph, head, tok.Func}
	if tenColumn {
		cols = append(cols, tok.Head2, tok.Func2)
	}

	out := cols[0]
	for _, c := range cols[1:] {
		out += "\t" + c
	}
	return out
}

// deoffsetID parses a working id/head string, subtracts offset, and
// re-renders it via formatID so the trailing ".0" drop logic stays in one
// place shared with the reader.
func deoffsetID(s string, offset float64) string {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Not a plain numeric id (shouldn't happen for non-super rows); pass
		// through verbatim rather than corrupting the row.
		return s
	}
	return formatID(v - offset)
}
