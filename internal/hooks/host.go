// SPDX-License-Identifier: Apache-2.0

package hooks

import (
	"os"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/nlplab/depedit-go/internal/conll"
)

const (
	beforeSentenceFn = "before_sentence"
	afterSentenceFn  = "after_sentence"
)

// Host loads one Lua hook script and invokes its before_sentence/
// after_sentence callbacks, if defined, around a sentence's rule run.
type Host struct {
	factory *stateFactory
	source  string
}

// Load reads and syntax-checks path, returning a Host ready to run its
// hooks. A script defining neither callback is valid; its hooks are
// simply no-ops.
func Load(path string) (*Host, error) {
	code, err := os.ReadFile(path) //nolint:gosec // hook path is an operator-supplied CLI flag
	if err != nil {
		return nil, oops.In("hooks").With("path", path).Hint("failed to read hook script").Wrap(err)
	}

	factory := newStateFactory()
	L, err := factory.newState()
	if err != nil {
		return nil, oops.In("hooks").With("path", path).Hint("failed to create validation state").Wrap(err)
	}
	defer L.Close()

	if err := L.DoString(string(code)); err != nil {
		return nil, oops.In("hooks").With("path", path).Hint("syntax error").Wrap(err)
	}

	return &Host{factory: factory, source: string(code)}, nil
}

// BeforeSentence invokes the script's before_sentence(annotations)
// callback, if defined, before the rule set runs on sent.
func (h *Host) BeforeSentence(sent *conll.Sentence) error {
	return h.call(beforeSentenceFn, sent)
}

// AfterSentence invokes the script's after_sentence(annotations)
// callback, if defined, after the rule set has run on sent.
func (h *Host) AfterSentence(sent *conll.Sentence) error {
	return h.call(afterSentenceFn, sent)
}

// call runs the named callback, if the script defines it, against a
// fresh Lua table mirroring sent's annotations, then writes any
// modifications the callback made back onto sent.
func (h *Host) call(fnName string, sent *conll.Sentence) error {
	L, err := h.factory.newState()
	if err != nil {
		return oops.In("hooks").With("hook", fnName).Hint("failed to create state").Wrap(err)
	}
	defer L.Close()

	if err := L.DoString(h.source); err != nil {
		return oops.In("hooks").With("hook", fnName).Hint("failed to load script").Wrap(err)
	}

	fn := L.GetGlobal(fnName)
	if fn.Type() != lua.LTFunction {
		return nil
	}

	table := annotationsToTable(L, sent)

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, table); err != nil {
		return oops.In("hooks").With("hook", fnName).Wrap(err)
	}

	applyTableToAnnotations(table, sent)
	return nil
}

func annotationsToTable(L *lua.LState, sent *conll.Sentence) *lua.LTable {
	t := L.NewTable()
	for _, a := range sent.Annotations {
		L.SetField(t, a.Key, lua.LString(a.Value))
	}
	return t
}

func applyTableToAnnotations(t *lua.LTable, sent *conll.Sentence) {
	t.ForEach(func(k, v lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok {
			return
		}
		value, ok := v.(lua.LString)
		if !ok {
			return
		}
		sent.SetAnnotation(string(key), string(value))
	})
}
