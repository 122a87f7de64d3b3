// SPDX-License-Identifier: Apache-2.0

package jsonrules

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaState holds the compiled schema and sync.Once for thread-safe
// lazy initialization, mirroring the teacher's plugin manifest schema.
type schemaState struct {
	once   sync.Once
	schema *jschema.Schema
	err    error
}

var globalSchemaState = &schemaState{}

// GetSchemaID returns the schema $id referenced from generated
// *.rules.json documents.
func GetSchemaID() string {
	return "https://github.com/nlplab/depedit-go/schemas/rules.schema.json"
}

// GenerateSchema reflects a JSON Schema from the Document DTO.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Document{})

	schema.ID = jsonschema.ID(GetSchemaID())
	schema.Title = "depedit rule document"
	schema.Description = "Schema for depedit *.rules.json rule files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.In("jsonrules").Hint("failed to marshal schema").Wrap(err)
	}
	data = append(data, '\n')
	return data, nil
}

// Validate validates a raw *.rules.json document against the schema
// reflected from Document.
func Validate(data []byte) error {
	if len(data) == 0 {
		return oops.In("jsonrules").New("rule document is empty")
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err != nil {
		return oops.In("jsonrules").Hint("invalid JSON").Wrap(err)
	}

	sch, err := getCompiledSchema()
	if err != nil {
		return oops.In("jsonrules").Hint("failed to compile schema").Wrap(err)
	}

	if err := sch.Validate(jsonData); err != nil {
		return oops.In("jsonrules").Hint("schema validation failed").Wrap(err)
	}
	return nil
}

func getCompiledSchema() (*jschema.Schema, error) {
	globalSchemaState.once.Do(func() {
		globalSchemaState.schema, globalSchemaState.err = compileSchema()
	})
	return globalSchemaState.schema, globalSchemaState.err
}

func compileSchema() (*jschema.Schema, error) {
	schemaBytes, err := GenerateSchema()
	if err != nil {
		return nil, err
	}

	var schemaData any
	if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, oops.In("jsonrules").Hint("failed to parse schema JSON").Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, oops.In("jsonrules").Hint("failed to add schema resource").Wrap(err)
	}

	sch, err := c.Compile("schema.json")
	if err != nil {
		return nil, oops.In("jsonrules").Hint("failed to compile schema").Wrap(err)
	}
	return sch, nil
}

// ResetSchemaCache clears the cached compiled schema. Used by tests.
func ResetSchemaCache() {
	globalSchemaState = &schemaState{}
}

// FormatSchemaError trims the jschema boilerplate prefix off a validation
// error for display.
func FormatSchemaError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if strings.Contains(msg, "schema validation failed:") {
		msg = strings.TrimPrefix(msg, "schema validation failed: ")
	}
	return msg
}
