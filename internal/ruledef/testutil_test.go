// SPDX-License-Identifier: Apache-2.0

package ruledef_test

import (
	"io"
	"strings"
)

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}
