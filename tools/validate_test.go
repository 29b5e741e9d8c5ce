package tools

import (
	"testing"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInput(t *testing.T) {
	minQty := 1.0

	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query":    {Type: "string"},
			"servings": {Type: "integer", Minimum: &minQty},
			"budget":   {Type: "number"},
			"strict":   {Type: "boolean"},
			"tags":     {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			"options": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"unit": {Type: "string"},
				},
				Required: []string{"unit"},
			},
		},
		Required: []string{"query"},
	}

	tests := []struct {
		name          string
		input         map[string]any
		expectError   bool
		errorContains string
	}{
		{
			name: "fully valid input",
			input: map[string]any{
				"query":    "tofu",
				"servings": 2.0,
				"budget":   12.5,
				"strict":   true,
				"tags":     []any{"vegan", "quick"},
				"options":  map[string]any{"unit": "g"},
			},
		},
		{
			name:  "optional fields omitted",
			input: map[string]any{"query": "tofu"},
		},
		{
			name:  "nil optional value skipped",
			input: map[string]any{"query": "tofu", "budget": nil},
		},
		{
			name:          "missing required field",
			input:         map[string]any{"budget": 10.0},
			expectError:   true,
			errorContains: `"query"`,
		},
		{
			name:          "wrong string type",
			input:         map[string]any{"query": 42.0},
			expectError:   true,
			errorContains: "expected string",
		},
		{
			name:          "wrong boolean type",
			input:         map[string]any{"query": "tofu", "strict": "yes"},
			expectError:   true,
			errorContains: "expected boolean",
		},
		{
			name:          "fractional value for integer field",
			input:         map[string]any{"query": "tofu", "servings": 2.5},
			expectError:   true,
			errorContains: "expected integer",
		},
		{
			name:          "value below minimum",
			input:         map[string]any{"query": "tofu", "servings": 0.0},
			expectError:   true,
			errorContains: "below minimum",
		},
		{
			name:          "non-array for array field",
			input:         map[string]any{"query": "tofu", "tags": "vegan"},
			expectError:   true,
			errorContains: "expected array",
		},
		{
			name:          "wrong item type inside array",
			input:         map[string]any{"query": "tofu", "tags": []any{"vegan", 3.0}},
			expectError:   true,
			errorContains: `"tags[1]"`,
		},
		{
			name:          "non-object for object field",
			input:         map[string]any{"query": "tofu", "options": "grams"},
			expectError:   true,
			errorContains: "expected object",
		},
		{
			name:          "nested required field missing",
			input:         map[string]any{"query": "tofu", "options": map[string]any{}},
			expectError:   true,
			errorContains: `"options.unit"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateInput("test_tool", schema, tt.input)

			if !tt.expectError {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			var argErr *InvalidArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, "test_tool", argErr.Tool)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestValidateInputNilSchema(t *testing.T) {
	assert.NoError(t, validateInput("test_tool", nil, map[string]any{"anything": "goes"}))
}

func TestAsNumber(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected float64
		ok       bool
	}{
		{name: "float64", value: 2.5, expected: 2.5, ok: true},
		{name: "int", value: 3, expected: 3.0, ok: true},
		{name: "int64", value: int64(7), expected: 7.0, ok: true},
		{name: "string rejected", value: "8", ok: false},
		{name: "nil rejected", value: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := asNumber(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, n)
			}
		})
	}
}
