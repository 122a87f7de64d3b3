// SPDX-License-Identifier: Apache-2.0

// Package hooks loads an optional Lua script that may register
// before_sentence/after_sentence callbacks with read/write access to a
// sentence's annotations (§2.4 of the full specification). Token fields
// stay off limits: the engine's own rule actions remain the only way to
// mutate them, preserving the closed action set.
package hooks

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// safeLibrary is a Lua standard library considered safe to expose to a
// sandboxed hook script.
type safeLibrary struct {
	name string
	fn   lua.LGFunction
}

// defaultSafeLibraries returns the libraries loaded into every hook
// state: base, table, string, math. os, io, debug, and package stay
// blocked so a hook script cannot touch the filesystem or environment.
func defaultSafeLibraries() []safeLibrary {
	return []safeLibrary{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
}

// stateFactory creates sandboxed Lua states with only safe libraries.
type stateFactory struct {
	libraries []safeLibrary
}

func newStateFactory() *stateFactory {
	return &stateFactory{libraries: defaultSafeLibraries()}
}

// newState creates a fresh Lua state with only the safe libraries loaded.
func (f *stateFactory) newState() (*lua.LState, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})

	for _, lib := range f.libraries {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("failed to open library %s: %w", lib.name, err)
		}
	}
	// The base library's dofile and loadfile read files from disk.
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("loadfile", lua.LNil)

	return L, nil
}
