// SPDX-License-Identifier: Apache-2.0

// Package version holds depedit's own release version, checked against
// rule files' version-gate directives (§2.2).
package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
)

// Current is the semantic version of this depedit build. Rule files may
// require a minimum or exact version via a `; depedit-version <constraint>`
// directive (tab-delimited format) or a depedit_version field (JSON rule
// documents); CheckConstraint enforces either against this constant.
const Current = "2.1.0"

// CheckConstraint reports an error if Current does not satisfy the given
// semver constraint string. Shared by ruledef.CompileRuleFile's
// `; depedit-version` directive and jsonrules.Decode's depedit_version
// field, since both gate on the same build version by the same rules.
func CheckConstraint(constraintStr string) error {
	constraintStr = strings.TrimSpace(constraintStr)
	c, err := semver.NewConstraint(constraintStr)
	if err != nil {
		return oops.Errorf("invalid depedit-version constraint %q: %w", constraintStr, err)
	}
	v, err := semver.NewVersion(Current)
	if err != nil {
		return oops.Errorf("invalid build version %q: %w", Current, err)
	}
	if !c.Check(v) {
		return oops.Errorf("rule file requires depedit-version %s, got %s", constraintStr, Current)
	}
	return nil
}
