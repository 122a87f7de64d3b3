// SPDX-License-Identifier: Apache-2.0

package conll

import (
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// isSuperTokenID reports whether id is a super-token id: a hyphenated range such as "1-2".
func isSuperTokenID(id string) bool {
	return strings.Contains(id, "-")
}

// ParsedLine is the classification of one raw input line.
type ParsedLine struct {
	Kind    LineKind
	Raw     string // original line text, for Kind == LineComment/LineBlank
	Token   *Token // populated for Kind == LineToken
	Warning string // non-empty when a MissingHead warning was recovered
}

// LineKind distinguishes the roles a raw input line can play (§6).
type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineToken
	LineOther // non-tab, non-comment, non-blank: a sentence terminator (§7 MalformedInput)
)

// ClassifyLine determines what kind of line line is, without yet doing
// any offset-adjusted token construction (that needs per-sentence state,
// see ParseTokenLine).
func ClassifyLine(line string) LineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return LineBlank
	case strings.HasPrefix(trimmed, "#"):
		return LineComment
	case strings.Contains(trimmed, "\t"):
		return LineToken
	default:
		return LineOther
	}
}

// ParseTokenLine parses one tab-delimited CoNLL row into a Token.
//
// tokOffset is the running cumulative count of non-super, non-current-sentence
// tokens already emitted in this run (§4.5); it is added to ids/heads so
// that ids stay unique across a whole file's worth of sentences, mirroring
// the source tool's running id scheme, and is subtracted again at
// serialization time to restore 1-based per-sentence numbering.
//
// is10Col reports whether the row had more than 8 columns (10-column
// CoNLLU) or fell back to the 8-column Malt-style format; the driver
// records the value of each sentence's first row on that sentence.
func ParseTokenLine(line string, tokOffset float64, quiet bool) (tok *Token, warning string, is10Col bool, err error) {
	trimmed := strings.TrimSpace(line)
	cols := strings.Split(trimmed, "\t")
	if len(cols) < 8 {
		return nil, "", false, oops.Code("MALFORMED_INPUT").With("line", line).Errorf("conll row has fewer than 8 columns")
	}

	rawID := cols[0]
	superTok := isSuperTokenID(rawID)

	tok = &Token{
		Text:       cols[1],
		Lemma:      cols[2],
		POS:        cols[3],
		CPOS:       cols[4],
		Func:       cols[7],
		Num:        rawID,
		Position:   PositionMid,
		IsSuperTok: superTok,
	}
	if len(cols) > 5 {
		tok.Morph = cols[5]
	}

	if superTok {
		tok.ID = rawID
		tok.Head = cols[6]
	} else {
		id, perr := strconv.ParseFloat(rawID, 64)
		if perr != nil {
			return nil, "", false, oops.Code("MALFORMED_INPUT").With("line", line).Wrapf(perr, "invalid token id %q", rawID)
		}
		tok.ID = formatID(id + tokOffset)

		if cols[6] == "_" {
			if !quiet {
				warning = "head not set for token " + tok.ID
			}
			tok.Head = formatID(0 + tokOffset)
		} else {
			headVal, herr := strconv.ParseFloat(cols[6], 64)
			if herr != nil {
				return nil, "", false, oops.Code("MALFORMED_INPUT").With("line", line).Wrapf(herr, "invalid head id %q", cols[6])
			}
			tok.Head = formatID(headVal + tokOffset)
		}

		if rawID == "1" {
			tok.Position = PositionFirst
		}
	}

	is10Col = len(cols) > 8
	if is10Col {
		tok.Head2 = cols[8]
		tok.Func2 = cols[9]
	} else {
		// 8-column Malt fallback: deps/misc default to copies of head/deprel (§6).
		tok.Head2 = cols[6]
		tok.Func2 = cols[7]
	}

	return tok, warning, is10Col, nil
}

// formatID renders a float id, dropping a trailing ".0" but preserving
// genuine decimal suffixes used by enhanced-dependency ellipsis tokens.
func formatID(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	return strings.TrimSuffix(s, ".0")
}
