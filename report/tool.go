package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"dietagent"
	"dietagent/tools"
)

// ReportTool exposes the full report pipeline as a callable tool so the
// coordinator can hand report generation to the model.
type ReportTool struct {
	generator *Generator
}

func NewReportTool(generator *Generator) *ReportTool {
	return &ReportTool{generator: generator}
}

func (t *ReportTool) Name() string  { return "generate_diet_report" }
func (t *ReportTool) Title() string { return "Generate Diet Report" }
func (t *ReportTool) Description() string {
	return "Generates a complete diet report: a weekly meal plan, a priced shopping list grouped by category, a nutritional summary, and recommendations."
}

func (t *ReportTool) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"preferences": {
				Type:        "object",
				Description: "User dietary preferences: calories, protein, budget, allergies, likes, dislikes, dietary_restrictions.",
			},
			"location": {Type: "string", Description: "User location, used to label shopping list stores."},
		},
		Required: []string{"preferences"},
	}
}

func (t *ReportTool) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"report": {Type: "object"},
		},
		Required: []string{"report"},
	}
}

func (t *ReportTool) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	prefs, err := decodePreferences(input["preferences"])
	if err != nil {
		return nil, &tools.InvalidArgumentError{Tool: t.Name(), Field: "preferences", Reason: err.Error()}
	}
	location, _ := input["location"].(string)

	rep, err := t.generator.GenerateDietReport(ctx, prefs, location)
	if err != nil {
		return nil, fmt.Errorf("generating diet report: %w", err)
	}
	return map[string]any{"report": toMap(rep)}, nil
}

// ShoppingListTool runs only the shopping-list stage against a meal plan the
// model already has in hand.
type ShoppingListTool struct {
	generator *Generator
}

func NewShoppingListTool(generator *Generator) *ShoppingListTool {
	return &ShoppingListTool{generator: generator}
}

func (t *ShoppingListTool) Name() string  { return "generate_shopping_list" }
func (t *ShoppingListTool) Title() string { return "Generate Shopping List" }
func (t *ShoppingListTool) Description() string {
	return "Builds a priced shopping list, grouped by category, from a weekly meal plan."
}

func (t *ShoppingListTool) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"meal_plan": {
				Type:        "array",
				Description: "Weekly meal plan: one element per day with day name and meals.",
				Items:       &jsonschema.Schema{Type: "object"},
			},
			"location": {Type: "string"},
		},
		Required: []string{"meal_plan"},
	}
}

func (t *ShoppingListTool) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"shopping_list": {Type: "object"},
		},
		Required: []string{"shopping_list"},
	}
}

func (t *ShoppingListTool) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	plan, err := decodePlan(input["meal_plan"])
	if err != nil {
		return nil, &tools.InvalidArgumentError{Tool: t.Name(), Field: "meal_plan", Reason: err.Error()}
	}
	location, _ := input["location"].(string)

	result := t.generator.GenerateShoppingList(plan, location)
	return map[string]any{"shopping_list": toMap(result)}, nil
}

// NutritionAnalysisTool runs only the nutrition stage against a meal plan.
type NutritionAnalysisTool struct {
	generator *Generator
}

func NewNutritionAnalysisTool(generator *Generator) *NutritionAnalysisTool {
	return &NutritionAnalysisTool{generator: generator}
}

func (t *NutritionAnalysisTool) Name() string  { return "analyze_nutrition" }
func (t *NutritionAnalysisTool) Title() string { return "Analyze Nutrition" }
func (t *NutritionAnalysisTool) Description() string {
	return "Recomputes daily and weekly nutrition totals and averages from a meal plan and flags threshold issues."
}

func (t *NutritionAnalysisTool) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"meal_plan": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "object"},
			},
		},
		Required: []string{"meal_plan"},
	}
}

func (t *NutritionAnalysisTool) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"nutrition": {Type: "object"},
		},
		Required: []string{"nutrition"},
	}
}

func (t *NutritionAnalysisTool) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	plan, err := decodePlan(input["meal_plan"])
	if err != nil {
		return nil, &tools.InvalidArgumentError{Tool: t.Name(), Field: "meal_plan", Reason: err.Error()}
	}
	result := t.generator.GenerateNutritionalAnalysis(plan)
	return map[string]any{"nutrition": toMap(result)}, nil
}

func decodePreferences(v any) (dietagent.Preferences, error) {
	var prefs dietagent.Preferences
	if v == nil {
		return prefs, fmt.Errorf("missing")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return prefs, err
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return prefs, fmt.Errorf("not a preferences object: %w", err)
	}
	return prefs, nil
}

func decodePlan(v any) ([]dietagent.DayPlan, error) {
	if v == nil {
		return nil, fmt.Errorf("missing")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var plan []dietagent.DayPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("not a meal plan array: %w", err)
	}
	for i := range plan {
		plan[i].TotalNutrition = plan[i].SumNutrition()
		plan[i].TotalCost = plan[i].SumCost()
	}
	return plan, nil
}

// toMap normalizes a typed value into the map form tool results use.
func toMap(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}
