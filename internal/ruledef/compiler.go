// SPDX-License-Identifier: Apache-2.0

package ruledef

import (
	"bufio"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/samber/oops"

	"github.com/nlplab/depedit-go/internal/version"
)

// versionDirectivePattern matches a rule file's version-gate comment, e.g.
// "; depedit-version >= 2.1" (§2.2). It extends the §6 "lines starting
// with ';' are ignored" rule: the directive is still a no-op for matching,
// but the loader parses and enforces it before accepting the rest of the
// file.
var versionDirectivePattern = regexp.MustCompile(`^;\s*depedit-version\s+(.+)$`)

// CompileRuleFile reads a whole rule file and compiles every non-blank,
// non-comment line into a Transformation. Blank lines and lines starting
// with ';' or '#' are ignored (§6), except a leading `; depedit-version`
// directive, which is checked against version.Current and rejected outright
// if unsatisfied. All compile errors across the file are collected and
// returned together via errors.Join; on any error the caller must not use
// the (possibly partial) Transformation list (§4.1, §7).
func CompileRuleFile(r io.Reader) ([]*Transformation, error) {
	var transformations []*Transformation
	var errs []error

	scanner := bufio.NewScanner(r)
	// Rule files are short, hand-authored text; a generous buffer avoids
	// bufio.Scanner's default 64KiB token limit tripping on a long action.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(trimmed, ";") {
			if m := versionDirectivePattern.FindStringSubmatch(trimmed); m != nil {
				if err := version.CheckConstraint(m[1]); err != nil {
					errs = append(errs, oops.Code("MALFORMED_RULE").With("line", lineNum).Wrap(err))
				}
			}
			continue
		}

		t, err := CompileLine(line, lineNum)
		if err != nil {
			errs = append(errs, oops.With("line", lineNum).Wrapf(err, "line %d", lineNum))
			continue
		}
		transformations = append(transformations, t)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, oops.Code("MALFORMED_RULE").Wrapf(err, "reading rule file"))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return transformations, nil
}
