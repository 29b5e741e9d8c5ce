package report

import (
	"fmt"

	"dietagent"
)

// Daily-average and daily-total thresholds driving the rule-based
// recommendations. Averages are per day over the days present in the plan.
const (
	minAvgCalories = 1500.0
	maxAvgCalories = 2500.0
	minAvgProtein  = 50.0
	maxAvgFat      = 80.0
	maxAvgSodium   = 2300.0
)

// AnalyzeNutrition recomputes each day's totals from the meal entries, sums
// them into weekly totals and per-day averages, and derives recommendations
// from fixed thresholds. Never trusts totals already present on the plan.
func AnalyzeNutrition(plan []dietagent.DayPlan) dietagent.NutritionResult {
	daily := make([]dietagent.DailyNutrition, 0, len(plan))
	var totals dietagent.Nutrition

	for _, day := range plan {
		n := day.SumNutrition()
		daily = append(daily, dietagent.DailyNutrition{Day: day.Day, Nutrition: n})
		totals.Add(n)
	}

	// An empty plan has nothing to average and nothing to recommend about.
	if len(plan) == 0 {
		return dietagent.NutritionResult{Daily: daily, Recommendations: []string{}}
	}

	days := float64(len(plan))
	averages := dietagent.Nutrition{
		Calories: totals.Calories / days,
		Protein:  totals.Protein / days,
		Carbs:    totals.Carbs / days,
		Fat:      totals.Fat / days,
		Fiber:    totals.Fiber / days,
		Sugar:    totals.Sugar / days,
		Sodium:   totals.Sodium / days,
	}

	return dietagent.NutritionResult{
		Daily:           daily,
		WeeklyTotals:    totals,
		WeeklyAverages:  averages,
		Recommendations: nutritionRecommendations(averages),
	}
}

func nutritionRecommendations(avg dietagent.Nutrition) []string {
	recs := make([]string, 0, 4)
	if avg.Calories < minAvgCalories {
		recs = append(recs, fmt.Sprintf("Average daily calories (%.0f) are below %.0f; consider increasing your intake.", avg.Calories, minAvgCalories))
	}
	if avg.Calories > maxAvgCalories {
		recs = append(recs, fmt.Sprintf("Average daily calories (%.0f) exceed %.0f; consider lighter meals.", avg.Calories, maxAvgCalories))
	}
	if avg.Protein < minAvgProtein {
		recs = append(recs, fmt.Sprintf("Average daily protein (%.0fg) is below %.0fg; add protein-rich foods.", avg.Protein, minAvgProtein))
	}
	if avg.Fat > maxAvgFat {
		recs = append(recs, fmt.Sprintf("Average daily fat (%.0fg) exceeds %.0fg; reduce fatty foods.", avg.Fat, maxAvgFat))
	}
	if avg.Sodium > maxAvgSodium {
		recs = append(recs, fmt.Sprintf("Average daily sodium (%.0fmg) exceeds %.0fmg; cut back on salty foods.", avg.Sodium, maxAvgSodium))
	}
	return recs
}
