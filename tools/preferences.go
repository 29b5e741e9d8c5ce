package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"dietagent/extract"
)

const preferencesPromptTemplate = `Extract structured diet preferences from this user text: %q.
Return ONLY a JSON object with any of these keys that apply: calories (number),
protein (number), budget (number), allergies (array of strings), likes (array
of strings), dislikes (array of strings), dietary_restrictions (array of
strings). Omit keys the user did not mention. No markdown, no commentary.
Example: {"calories": 2000, "allergies": ["nuts"], "budget": 50}`

// PreferencesExtract is an LLM-backed tool that turns free user text into a
// structured preferences object. Extraction failures degrade to an empty
// object; they never abort the call.
type PreferencesExtract struct{ llm TextCompleter }

func NewPreferencesExtract(llm TextCompleter) *PreferencesExtract {
	return &PreferencesExtract{llm: llm}
}

func (t *PreferencesExtract) Name() string  { return "extract_preferences" }
func (t *PreferencesExtract) Title() string { return "Extract Diet Preferences" }
func (t *PreferencesExtract) Description() string {
	return "Extracts structured diet preferences (calories, protein, allergies, likes, dislikes, dietary restrictions, budget) from free user text."
}

func (t *PreferencesExtract) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"user_input": {Type: "string"},
		},
		Required: []string{"user_input"},
	}
}

func (t *PreferencesExtract) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"preferences": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"calories":             {Type: "number"},
					"protein":              {Type: "number"},
					"budget":               {Type: "number"},
					"allergies":            {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
					"likes":                {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
					"dislikes":             {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
					"dietary_restrictions": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
				},
			},
		},
		Required: []string{"preferences"},
	}
}

func (t *PreferencesExtract) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	userInput, _ := input["user_input"].(string)

	text, err := t.llm.CompleteText(ctx, fmt.Sprintf(preferencesPromptTemplate, userInput))
	if err != nil {
		return nil, fmt.Errorf("preference extraction call: %w", err)
	}

	prefs, ok := extract.Object(text)
	if !ok {
		slog.Warn("TOOL: Preference extraction produced no JSON, falling back to empty object", "raw_len", len(text))
	}

	return map[string]any{"preferences": prefs}, nil
}
