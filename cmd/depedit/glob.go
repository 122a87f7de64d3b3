// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/nlplab/depedit-go/pkg/errutil"
)

// expandPattern lists the files in pattern's directory matching its
// base-name glob, sorted for deterministic batch output naming. A
// pattern with no glob metacharacters degrades to an exact match
// against its one file. gobwas/glob, not filepath.Glob, does the
// matching so brace-alternation patterns (e.g. "*.{conll,conllu}")
// work the same way they do in the rest of the domain stack.
func expandPattern(pattern string) ([]string, error) {
	dir, base := filepath.Split(pattern)
	if dir == "" {
		dir = "."
	}

	g, err := glob.Compile(base)
	if err != nil {
		return nil, oops.Code(string(errutil.CodeMalformedInput)).With("pattern", pattern).Wrap(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, oops.Code(string(errutil.CodeMalformedInput)).With("pattern", pattern).Wrap(err)
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if g.Match(entry.Name()) {
			matches = append(matches, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(matches)

	if len(matches) == 0 {
		return nil, oops.Code(string(errutil.CodeMalformedInput)).With("pattern", pattern).Errorf("no files match pattern %q", pattern)
	}
	return matches, nil
}
