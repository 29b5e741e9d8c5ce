package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dietagent"
	"dietagent/extract"
	"dietagent/tools"
)

const weeklyPlanPromptTemplate = `Create a 7-day meal plan for a user with these preferences:

%s

Respond with ONLY a JSON array. Each element describes one day:
{"day": "Monday", "meals": {"breakfast": {...}, "lunch": {...}, "dinner": {...}}}
Each meal has: name, ingredients (array of strings), nutrition
(calories, protein, carbs, fat, fiber, sugar, sodium as numbers), cost, prep_time.`

const recommendationsPromptTemplate = `Based on this nutritional summary of a weekly meal plan, give 3 short,
actionable diet recommendations.

%s

Respond with ONLY a JSON array of strings.`

// fallbackRecommendations is used when the model returns nothing usable.
var fallbackRecommendations = []string{
	"Drink plenty of water throughout the day.",
	"Aim for a variety of vegetables across the week.",
	"Prefer whole grains over refined ones.",
}

// Generator builds diet reports from user preferences. The meal plan and the
// free-text recommendations come from the model; every aggregate figure
// (costs, nutrition totals, averages) is recomputed deterministically from
// the parsed leaf data.
type Generator struct {
	llm    tools.TextCompleter
	prices PriceTable
	now    func() time.Time
}

func NewGenerator(llm tools.TextCompleter, prices PriceTable) *Generator {
	return &Generator{llm: llm, prices: prices, now: time.Now}
}

// GenerateDietReport runs the full pipeline: plan generation, shopping list,
// nutrition analysis, and report assembly.
func (g *Generator) GenerateDietReport(ctx context.Context, prefs dietagent.Preferences, location string) (*dietagent.DietReport, error) {
	plan, err := g.generatePlan(ctx, prefs)
	if err != nil {
		return nil, err
	}

	shopping := BuildShoppingList(plan, location, g.prices)
	nutrition := AnalyzeNutrition(plan)

	var weeklyCost float64
	for _, day := range plan {
		weeklyCost += day.SumCost()
	}

	recs := g.generateRecommendations(ctx, nutrition)

	return &dietagent.DietReport{
		ID:                 uuid.NewString(),
		UserInfo:           prefs,
		MealPlan:           plan,
		ShoppingList:       shopping,
		TotalWeeklyCost:    weeklyCost,
		NutritionalSummary: nutrition,
		Recommendations:    recs,
		GeneratedAt:        g.now(),
	}, nil
}

// GenerateShoppingList runs only the shopping-list stage against an existing
// plan.
func (g *Generator) GenerateShoppingList(plan []dietagent.DayPlan, location string) dietagent.ShoppingListResult {
	return BuildShoppingList(plan, location, g.prices)
}

// GenerateNutritionalAnalysis runs only the nutrition stage against an
// existing plan.
func (g *Generator) GenerateNutritionalAnalysis(plan []dietagent.DayPlan) dietagent.NutritionResult {
	return AnalyzeNutrition(plan)
}

func (g *Generator) generatePlan(ctx context.Context, prefs dietagent.Preferences) ([]dietagent.DayPlan, error) {
	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("marshaling preferences: %w", err)
	}

	text, err := g.llm.CompleteText(ctx, fmt.Sprintf(weeklyPlanPromptTemplate, string(prefsJSON)))
	if err != nil {
		return nil, fmt.Errorf("generating meal plan: %w", err)
	}

	plan, ok := ParseMealPlan(text)
	if !ok {
		slog.Warn("REPORT: meal plan unparseable, using fallback plan")
	}
	return plan, nil
}

func (g *Generator) generateRecommendations(ctx context.Context, nutrition dietagent.NutritionResult) []string {
	summaryJSON, err := json.Marshal(nutrition)
	if err != nil {
		return append(nutrition.Recommendations, fallbackRecommendations...)
	}

	text, err := g.llm.CompleteText(ctx, fmt.Sprintf(recommendationsPromptTemplate, string(summaryJSON)))
	if err != nil {
		slog.Warn("REPORT: recommendations generation failed, using fallback", "error", err)
		return append(nutrition.Recommendations, fallbackRecommendations...)
	}

	items, ok := extract.List(text)
	if !ok || len(items) == 0 {
		return append(nutrition.Recommendations, fallbackRecommendations...)
	}

	recs := make([]string, 0, len(items)+len(nutrition.Recommendations))
	recs = append(recs, nutrition.Recommendations...)
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			recs = append(recs, s)
		}
	}
	if len(recs) == 0 {
		return fallbackRecommendations
	}
	return recs
}
