package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dietagent"
)

func dayWith(day string, n dietagent.Nutrition) dietagent.DayPlan {
	return dietagent.DayPlan{
		Day: day,
		Meals: map[string]dietagent.MealSlot{
			dietagent.SlotLunch: {{Name: "Meal", Nutrition: n}},
		},
	}
}

func TestAnalyzeNutritionAverages(t *testing.T) {
	plan := []dietagent.DayPlan{
		dayWith("Monday", dietagent.Nutrition{Calories: 1100, Protein: 60}),
		dayWith("Tuesday", dietagent.Nutrition{Calories: 1200, Protein: 55}),
		dayWith("Wednesday", dietagent.Nutrition{Calories: 1150, Protein: 65}),
	}

	result := AnalyzeNutrition(plan)

	require.Len(t, result.Daily, 3)
	assert.Equal(t, "Monday", result.Daily[0].Day)
	assert.InDelta(t, 3450.0, result.WeeklyTotals.Calories, 0.001)
	assert.InDelta(t, 1150.0, result.WeeklyAverages.Calories, 0.001)
	assert.InDelta(t, 60.0, result.WeeklyAverages.Protein, 0.001)
}

func TestAnalyzeNutritionIgnoresStatedTotals(t *testing.T) {
	day := dayWith("Monday", dietagent.Nutrition{Calories: 500})
	day.TotalNutrition = dietagent.Nutrition{Calories: 9999}

	result := AnalyzeNutrition([]dietagent.DayPlan{day})
	assert.InDelta(t, 500.0, result.Daily[0].Nutrition.Calories, 0.001)
	assert.InDelta(t, 500.0, result.WeeklyTotals.Calories, 0.001)
}

func TestAnalyzeNutritionEmptyPlan(t *testing.T) {
	result := AnalyzeNutrition(nil)
	assert.Empty(t, result.Daily)
	assert.Zero(t, result.WeeklyAverages.Calories)
	assert.Empty(t, result.Recommendations)

	result = AnalyzeNutrition([]dietagent.DayPlan{})
	assert.Empty(t, result.Recommendations)
}

func TestNutritionRecommendationThresholds(t *testing.T) {
	tests := []struct {
		name string
		avg  dietagent.Nutrition
		want string
	}{
		{"low calories", dietagent.Nutrition{Calories: 1200, Protein: 60}, "increasing your intake"},
		{"high calories", dietagent.Nutrition{Calories: 2800, Protein: 60}, "lighter meals"},
		{"low protein", dietagent.Nutrition{Calories: 2000, Protein: 30}, "protein-rich foods"},
		{"high fat", dietagent.Nutrition{Calories: 2000, Protein: 60, Fat: 95}, "reduce fatty foods"},
		{"high sodium", dietagent.Nutrition{Calories: 2000, Protein: 60, Sodium: 3000}, "salty foods"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := nutritionRecommendations(tt.avg)
			require.NotEmpty(t, recs)
			found := false
			for _, rec := range recs {
				if strings.Contains(rec, tt.want) {
					found = true
				}
			}
			assert.True(t, found, "expected a recommendation mentioning %q, got %v", tt.want, recs)
		})
	}
}

func TestNutritionRecommendationsNoneWhenBalanced(t *testing.T) {
	recs := nutritionRecommendations(dietagent.Nutrition{Calories: 2000, Protein: 70, Fat: 60, Sodium: 1800})
	assert.Empty(t, recs)
}
