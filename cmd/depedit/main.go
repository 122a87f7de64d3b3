// SPDX-License-Identifier: Apache-2.0

// Command depedit rewrites CoNLL-style dependency-parsed sentences
// according to a tab-delimited or JSON rule file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
