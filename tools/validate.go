package tools

import (
	"fmt"
	"math"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// validateInput checks a call's input map against the tool's declared schema:
// required properties must be present and declared primitive types must
// match. Model-supplied values arrive as JSON-decoded Go values, so numbers
// are float64.
func validateInput(tool string, schema *jsonschema.Schema, input map[string]any) error {
	if schema == nil {
		return nil
	}

	for _, name := range schema.Required {
		if _, ok := input[name]; !ok {
			return &InvalidArgumentError{Tool: tool, Field: name, Reason: "required argument missing"}
		}
	}

	for name, prop := range schema.Properties {
		value, ok := input[name]
		if !ok || value == nil {
			continue
		}
		if err := validateValue(tool, name, prop, value); err != nil {
			return err
		}
	}

	return nil
}

func validateValue(tool, field string, schema *jsonschema.Schema, value any) error {
	if schema == nil {
		return nil
	}

	switch schema.Type {
	case "string":
		if _, ok := value.(string); !ok {
			return &InvalidArgumentError{Tool: tool, Field: field, Reason: fmt.Sprintf("expected string, got %T", value)}
		}

	case "boolean":
		if _, ok := value.(bool); !ok {
			return &InvalidArgumentError{Tool: tool, Field: field, Reason: fmt.Sprintf("expected boolean, got %T", value)}
		}

	case "number", "integer":
		n, ok := asNumber(value)
		if !ok {
			return &InvalidArgumentError{Tool: tool, Field: field, Reason: fmt.Sprintf("expected %s, got %T", schema.Type, value)}
		}
		if schema.Type == "integer" && n != math.Trunc(n) {
			return &InvalidArgumentError{Tool: tool, Field: field, Reason: fmt.Sprintf("expected integer, got %v", n)}
		}
		if schema.Minimum != nil && n < *schema.Minimum {
			return &InvalidArgumentError{Tool: tool, Field: field, Reason: fmt.Sprintf("value %v below minimum %v", n, *schema.Minimum)}
		}

	case "array":
		arr, ok := value.([]any)
		if !ok {
			return &InvalidArgumentError{Tool: tool, Field: field, Reason: fmt.Sprintf("expected array, got %T", value)}
		}
		if schema.Items != nil {
			for i, item := range arr {
				if err := validateValue(tool, fmt.Sprintf("%s[%d]", field, i), schema.Items, item); err != nil {
					return err
				}
			}
		}

	case "object":
		m, ok := value.(map[string]any)
		if !ok {
			return &InvalidArgumentError{Tool: tool, Field: field, Reason: fmt.Sprintf("expected object, got %T", value)}
		}
		for _, name := range schema.Required {
			if _, ok := m[name]; !ok {
				return &InvalidArgumentError{Tool: tool, Field: field + "." + name, Reason: "required argument missing"}
			}
		}
		for name, prop := range schema.Properties {
			if v, ok := m[name]; ok && v != nil {
				if err := validateValue(tool, field+"."+name, prop, v); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
