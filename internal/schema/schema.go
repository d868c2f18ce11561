// Package schema holds the quiz document JSON Schema and validation helpers.
// The embedded schema is the single source of truth for what a valid quiz
// looks like; both the prompt builder and the generator validate against it.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed quiz_schema.json
var rawSchema []byte

var compiled *gojsonschema.Schema

func init() {
	var err error
	compiled, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(rawSchema))
	if err != nil {
		panic(fmt.Sprintf("quiz_schema.json does not compile: %v", err))
	}
}

// Validate checks an already-decoded quiz document against the schema and
// returns human-readable violations, empty when the document is valid.
func Validate(doc any) []string {
	result, err := compiled.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return []string{fmt.Sprintf("validation error: %v", err)}
	}
	return formatErrors(result)
}

// ValidateJSON decodes raw JSON and validates it. A parse failure is reported
// as a violation, not an error, so callers can feed it straight into a repair
// prompt. The decoded document is returned when parsing succeeded.
func ValidateJSON(raw string) (map[string]any, []string) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, []string{fmt.Sprintf("invalid JSON: %v", err)}
	}
	return doc, Validate(doc)
}

// Document returns the schema decoded into a generic map, for embedding into
// prompts.
func Document() map[string]any {
	var doc map[string]any
	if err := json.Unmarshal(rawSchema, &doc); err != nil {
		panic(fmt.Sprintf("quiz_schema.json is not valid JSON: %v", err))
	}
	return doc
}

// Pretty returns the schema pretty-printed for prompt embedding.
func Pretty() string {
	out, err := json.MarshalIndent(Document(), "", "  ")
	if err != nil {
		panic(err)
	}
	return string(out)
}

func formatErrors(result *gojsonschema.Result) []string {
	if result.Valid() {
		return nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return violations
}
