package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDietPlan_Run(t *testing.T) {
	tests := []struct {
		name          string
		completion    string
		completionErr error
		input         map[string]any
		expectedPlan  string
		expectError   bool
	}{
		{
			name:         "plan text passed through",
			completion:   "Monday\nBreakfast: oatmeal\nLunch: lentil soup\n",
			input:        map[string]any{"preferences": map[string]any{"calories": 2000.0}},
			expectedPlan: "Monday\nBreakfast: oatmeal\nLunch: lentil soup",
		},
		{
			name:         "missing preferences still plans",
			completion:   "A balanced week of meals.",
			input:        map[string]any{},
			expectedPlan: "A balanced week of meals.",
		},
		{
			name:        "empty completion is an error",
			completion:  "   \n",
			input:       map[string]any{"preferences": map[string]any{}},
			expectError: true,
		},
		{
			name:          "completion failure surfaces",
			completionErr: errors.New("model unavailable"),
			input:         map[string]any{"preferences": map[string]any{}},
			expectError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &stubCompleter{text: tt.completion, err: tt.completionErr}
			tool := NewDietPlan(llm)

			result, err := tool.Run(context.Background(), tt.input)

			if tt.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedPlan, result["plan"])
		})
	}
}

func TestDietPlanPromptRendersPreferences(t *testing.T) {
	llm := &stubCompleter{text: "some plan"}
	tool := NewDietPlan(llm)

	_, err := tool.Run(context.Background(), map[string]any{
		"preferences": map[string]any{"budget": 50.0},
	})
	require.NoError(t, err)
	assert.Contains(t, llm.lastPrompt, `"budget":50`)

	llm2 := &stubCompleter{text: "some plan"}
	tool2 := NewDietPlan(llm2)
	_, err = tool2.Run(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, llm2.lastPrompt, "no specific preferences")
}
