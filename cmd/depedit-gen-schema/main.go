// SPDX-License-Identifier: Apache-2.0

// Command depedit-gen-schema generates the JSON Schema for *.rules.json
// rule documents.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nlplab/depedit-go/internal/ruledef/jsonrules"
)

func main() {
	schema, err := jsonrules.GenerateSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join("schemas", "rules.schema.json")
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, schema, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}
