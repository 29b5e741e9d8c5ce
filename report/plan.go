package report

import (
	"log/slog"

	"dietagent"
	"dietagent/extract"
)

// ParseMealPlan recovers a structured meal plan from LLM plan text. Totals
// are recomputed from the leaf meals; the model's stated aggregates are
// discarded. On extraction failure the fixed fallback single-day plan is
// returned so downstream stages always have valid input.
func ParseMealPlan(text string) ([]dietagent.DayPlan, bool) {
	var plan []dietagent.DayPlan
	if err := extract.Into(text, &plan); err != nil || len(plan) == 0 {
		if err != nil {
			slog.Warn("REPORT: Meal plan extraction failed, using fallback plan", "error", err)
		} else {
			slog.Warn("REPORT: Meal plan extraction produced an empty plan, using fallback plan")
		}
		return []dietagent.DayPlan{FallbackDayPlan()}, false
	}

	for i := range plan {
		plan[i].TotalNutrition = plan[i].SumNutrition()
		plan[i].TotalCost = plan[i].SumCost()
	}
	return plan, true
}

// FallbackDayPlan is the fully specified single-day plan substituted when
// meal plan extraction fails.
func FallbackDayPlan() dietagent.DayPlan {
	day := dietagent.DayPlan{
		Day: "Monday",
		Meals: map[string]dietagent.MealSlot{
			dietagent.SlotBreakfast: {{
				Name:        "Oatmeal with Berries",
				Ingredients: []string{"oats", "berries", "honey", "milk"},
				Nutrition:   dietagent.Nutrition{Calories: 300, Protein: 12, Carbs: 45, Fat: 8},
				Cost:        2.50,
				PrepTime:    "10 minutes",
			}},
			dietagent.SlotLunch: {{
				Name:        "Vegetarian Pasta",
				Ingredients: []string{"pasta", "tomatoes", "basil", "olive oil"},
				Nutrition:   dietagent.Nutrition{Calories: 450, Protein: 15, Carbs: 70, Fat: 12},
				Cost:        3.20,
				PrepTime:    "20 minutes",
			}},
			dietagent.SlotDinner: {{
				Name:        "Grilled Chicken Salad",
				Ingredients: []string{"chicken breast", "lettuce", "tomatoes", "cucumber"},
				Nutrition:   dietagent.Nutrition{Calories: 350, Protein: 35, Carbs: 15, Fat: 18},
				Cost:        4.80,
				PrepTime:    "25 minutes",
			}},
		},
	}
	day.TotalNutrition = day.SumNutrition()
	day.TotalCost = day.SumCost()
	return day
}
