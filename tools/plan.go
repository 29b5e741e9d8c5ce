package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const dietPlanPromptTemplate = `Create a diet plan that meets these preferences: %s.
Include meals, snacks, and drinks for each day. Keep portions and costs
realistic for the stated budget and respect all allergies and restrictions.`

// DietPlan is an LLM-backed tool that produces a free-text diet plan from a
// preferences object. The text is returned unchanged; structured plan parsing
// happens downstream in the report pipeline.
type DietPlan struct{ llm TextCompleter }

func NewDietPlan(llm TextCompleter) *DietPlan { return &DietPlan{llm: llm} }

func (t *DietPlan) Name() string  { return "plan_diet" }
func (t *DietPlan) Title() string { return "Plan Diet" }
func (t *DietPlan) Description() string {
	return "Creates a diet plan narrative (meals, snacks, drinks) from a structured preferences object."
}

func (t *DietPlan) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"preferences": {Type: "object"},
		},
		Required: []string{"preferences"},
	}
}

func (t *DietPlan) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"plan": {Type: "string"},
		},
		Required: []string{"plan"},
	}
}

func (t *DietPlan) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	prefs, _ := input["preferences"].(map[string]any)

	rendered := "no specific preferences"
	if len(prefs) > 0 {
		if b, err := json.Marshal(prefs); err == nil {
			rendered = string(b)
		}
	}

	text, err := t.llm.CompleteText(ctx, fmt.Sprintf(dietPlanPromptTemplate, rendered))
	if err != nil {
		return nil, fmt.Errorf("diet plan call: %w", err)
	}

	plan := strings.TrimSpace(text)
	if plan == "" {
		return nil, fmt.Errorf("diet plan call returned empty text")
	}

	return map[string]any{"plan": plan}, nil
}
