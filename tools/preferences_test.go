package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCompleter returns a canned completion and records the prompt it saw.
type stubCompleter struct {
	text       string
	err        error
	lastPrompt string
}

func (s *stubCompleter) CompleteText(ctx context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func TestPreferencesExtract_Run(t *testing.T) {
	tests := []struct {
		name          string
		completion    string
		completionErr error
		input         map[string]any
		expectedPrefs map[string]any
		expectError   bool
	}{
		{
			name:       "clean JSON object",
			completion: `{"calories": 2000, "allergies": ["nuts"], "budget": 50}`,
			input:      map[string]any{"user_input": "2000 calories, nut allergy, 50 euro budget"},
			expectedPrefs: map[string]any{
				"calories":  2000.0,
				"allergies": []any{"nuts"},
				"budget":    50.0,
			},
		},
		{
			name:       "JSON wrapped in prose",
			completion: "Sure, here you go:\n{\"dietary_restrictions\": [\"vegetarian\"]}\nAnything else?",
			input:      map[string]any{"user_input": "I'm vegetarian"},
			expectedPrefs: map[string]any{
				"dietary_restrictions": []any{"vegetarian"},
			},
		},
		{
			name:          "garbage falls back to empty object",
			completion:    "I could not determine any preferences from that.",
			input:         map[string]any{"user_input": "asdf"},
			expectedPrefs: map[string]any{},
		},
		{
			name:          "completion failure surfaces",
			completionErr: errors.New("model unavailable"),
			input:         map[string]any{"user_input": "anything"},
			expectError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &stubCompleter{text: tt.completion, err: tt.completionErr}
			tool := NewPreferencesExtract(llm)

			result, err := tool.Run(context.Background(), tt.input)

			if tt.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedPrefs, result["preferences"])
		})
	}
}

func TestPreferencesExtractPromptCarriesUserInput(t *testing.T) {
	llm := &stubCompleter{text: "{}"}
	tool := NewPreferencesExtract(llm)

	_, err := tool.Run(context.Background(), map[string]any{"user_input": "low sodium, no dairy"})
	require.NoError(t, err)
	assert.True(t, strings.Contains(llm.lastPrompt, "low sodium, no dairy"))
}
