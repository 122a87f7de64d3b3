// SPDX-License-Identifier: Apache-2.0

// Package ruledef compiles rule-file text into the engine's internal
// Transformation form (§4.1): node clauses into DefinitionMatchers, relation
// and action clauses into their typed counterparts, with alias rewriting and
// shorthand normalization applied first.
package ruledef

import (
	"fmt"

	"github.com/nlplab/depedit-go/internal/conll"
)

// Field is the canonical vocabulary addressable from node clauses and
// assignment actions (§3, §6). It is kept as its own enum in this package,
// rather than in internal/conll, so the get/set switch below can live next
// to the DSL that drives it without conll importing ruledef.
type Field int

const (
	FieldText Field = iota
	FieldLemma
	FieldPOS
	FieldCPOS
	FieldMorph
	FieldHead
	FieldFunc
	FieldHead2
	FieldFunc2
	FieldNum
	FieldPosition // pseudo-field: first|last|mid, read-only
)

// canonicalNames maps canonical field names to their Field value.
var canonicalNames = map[string]Field{
	"text":  FieldText,
	"lemma": FieldLemma,
	"pos":   FieldPOS,
	"cpos":  FieldCPOS,
	"morph": FieldMorph,
	"head":  FieldHead,
	"func":  FieldFunc,
	"head2": FieldHead2,
	"func2": FieldFunc2,
	"num":   FieldNum,

	"position": FieldPosition,
}

// aliasNames maps the input-format alias names (§3) to their canonical Field.
var aliasNames = map[string]Field{
	"form":    FieldText,
	"upostag": FieldPOS,
	"xpostag": FieldCPOS,
	"feats":   FieldMorph,
	"deprel":  FieldFunc,
	"deps":    FieldHead2,
	"misc":    FieldFunc2,
}

// canonicalFieldName is the inverse of canonicalNames, used for alias
// rewriting of assignment actions (§4.1: "replace :alias= with :canonical=").
var canonicalFieldName = func() map[Field]string {
	m := make(map[Field]string, len(canonicalNames))
	for name, f := range canonicalNames {
		m[f] = name
	}
	return m
}()

// LookupField resolves a canonical or alias field name. ok is false for an
// unrecognized name, which the compiler treats as a MalformedRule.
func LookupField(name string) (Field, bool) {
	if f, ok := canonicalNames[name]; ok {
		return f, true
	}
	if f, ok := aliasNames[name]; ok {
		return f, true
	}
	return 0, false
}

// CanonicalName renders f using its canonical spelling, for alias rewriting
// of assignment actions and for error messages.
func CanonicalName(f Field) string {
	return canonicalFieldName[f]
}

// Assignable reports whether f may appear on the left of an assignment
// action; the position pseudo-field is read-only (it is derived from a
// token's place in the sentence, not stored per se).
func Assignable(f Field) bool {
	return f != FieldPosition
}

// Get fetches f from tok's canonical slot.
func Get(tok *conll.Token, f Field) string {
	switch f {
	case FieldText:
		return tok.Text
	case FieldLemma:
		return tok.Lemma
	case FieldPOS:
		return tok.POS
	case FieldCPOS:
		return tok.CPOS
	case FieldMorph:
		return tok.Morph
	case FieldHead:
		return tok.Head
	case FieldFunc:
		return tok.Func
	case FieldHead2:
		return tok.Head2
	case FieldFunc2:
		return tok.Func2
	case FieldNum:
		return tok.Num
	case FieldPosition:
		return string(tok.Position)
	default:
		panic(fmt.Sprintf("ruledef: unhandled field %d", f))
	}
}

// Set assigns value into f's canonical slot on tok. Callers must check
// Assignable(f) first; Set panics on the read-only position pseudo-field so
// a compiler bug surfaces immediately rather than silently no-opping.
func Set(tok *conll.Token, f Field, value string) {
	switch f {
	case FieldText:
		tok.Text = value
	case FieldLemma:
		tok.Lemma = value
	case FieldPOS:
		tok.POS = value
	case FieldCPOS:
		tok.CPOS = value
	case FieldMorph:
		tok.Morph = value
	case FieldHead:
		tok.Head = value
	case FieldFunc:
		tok.Func = value
	case FieldHead2:
		tok.Head2 = value
	case FieldFunc2:
		tok.Func2 = value
	case FieldNum:
		tok.Num = value
	default:
		panic(fmt.Sprintf("ruledef: field %d is not assignable", f))
	}
}
