// Package schema generates JSON Schemas for tool parameters and
// validates raw tool inputs against them.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Generate produces a JSON Schema document from a Go struct type T.
// Struct tags (json, jsonschema) drive the generated properties and
// required list.
func Generate[T any]() json.RawMessage {
	var zero T
	s := jsonschema.Reflect(&zero)
	root := extractRoot(s)

	doc := map[string]any{
		"type": "object",
	}
	if props := properties(root); props != nil {
		doc["properties"] = props
	}
	if len(root.Required) > 0 {
		doc["required"] = root.Required
	}

	data, err := json.Marshal(doc)
	if err != nil {
		// Reflection output is always marshalable; a failure here is a
		// programming error in the input type.
		panic(fmt.Sprintf("schema: marshal generated schema: %v", err))
	}
	return data
}

// extractRoot resolves the root schema, following $ref into $defs.
// invopop/jsonschema places the actual type under $defs with a ref like
// "#/$defs/TypeName".
func extractRoot(s *jsonschema.Schema) *jsonschema.Schema {
	if s.Ref != "" && s.Definitions != nil {
		for _, def := range s.Definitions {
			if def.Type == "object" {
				return def
			}
		}
	}
	return s
}

func properties(s *jsonschema.Schema) map[string]any {
	if s.Properties == nil {
		return nil
	}
	props := make(map[string]any)
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		props[pair.Key] = property(pair.Value)
	}
	return props
}

func property(s *jsonschema.Schema) map[string]any {
	m := make(map[string]any)

	if s.Type != "" {
		m["type"] = s.Type
	}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if s.Default != nil {
		m["default"] = s.Default
	}
	if len(s.Enum) > 0 {
		m["enum"] = s.Enum
	}

	// Pointer fields surface as anyOf with a null branch.
	if len(s.AnyOf) > 0 {
		for _, sub := range s.AnyOf {
			if sub.Type != "null" && sub.Type != "" {
				m["type"] = sub.Type
				break
			}
		}
	}

	if s.Properties != nil {
		m["type"] = "object"
		m["properties"] = properties(s)
		if len(s.Required) > 0 {
			m["required"] = s.Required
		}
	}

	if s.Items != nil {
		m["items"] = property(s.Items)
	}

	return m
}

// Validator checks a raw tool input before execution. Implementations
// return a descriptive error for inputs that do not conform.
type Validator interface {
	Validate(raw json.RawMessage) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(raw json.RawMessage) error

// Validate implements Validator.
func (f ValidatorFunc) Validate(raw json.RawMessage) error { return f(raw) }

// For builds a Validator for input type T: the raw value must be a JSON
// object, decode into T without unknown fields, and carry every required
// property from the generated schema.
func For[T any]() Validator {
	required := requiredKeys(Generate[T]())

	return ValidatorFunc(func(raw json.RawMessage) error {
		if len(raw) == 0 {
			raw = json.RawMessage("{}")
		}

		var keys map[string]json.RawMessage
		if err := json.Unmarshal(raw, &keys); err != nil {
			return fmt.Errorf("input is not a JSON object: %w", err)
		}
		for _, k := range required {
			if _, ok := keys[k]; !ok {
				return fmt.Errorf("missing required parameter %q", k)
			}
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		var v T
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("invalid input: %w", err)
		}
		return nil
	})
}

func requiredKeys(doc json.RawMessage) []string {
	var s struct {
		Required []string `json:"required"`
	}
	_ = json.Unmarshal(doc, &s)
	return s.Required
}
