package dietagent

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"dietagent/tools"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

type ToolProvider interface {
	GetTools() []tools.Tool
	GetTool(name string) (tools.Tool, error)
}

// Meal slot names used as DayPlan.Meals keys.
const (
	SlotBreakfast = "breakfast"
	SlotLunch     = "lunch"
	SlotDinner    = "dinner"
	SlotSnacks    = "snacks"
)

// Nutrition holds macro and micro totals for a meal, a day, or a week.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber,omitempty"`
	Sugar    float64 `json:"sugar,omitempty"`
	Sodium   float64 `json:"sodium,omitempty"`
}

// Add accumulates another nutrition record into this one.
func (n *Nutrition) Add(other Nutrition) {
	n.Calories += other.Calories
	n.Protein += other.Protein
	n.Carbs += other.Carbs
	n.Fat += other.Fat
	n.Fiber += other.Fiber
	n.Sugar += other.Sugar
	n.Sodium += other.Sodium
}

// Preferences represents extracted diet preferences. Absent fields stay nil
// and are omitted from JSON; they are never defaulted to zero.
type Preferences struct {
	Calories            *float64 `json:"calories,omitempty"`
	Protein             *float64 `json:"protein,omitempty"`
	Budget              *float64 `json:"budget,omitempty"`
	Allergies           []string `json:"allergies,omitempty"`
	Likes               []string `json:"likes,omitempty"`
	Dislikes            []string `json:"dislikes,omitempty"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
}

// IsEmpty reports whether no preference field was provided at all.
func (p Preferences) IsEmpty() bool {
	return p.Calories == nil && p.Protein == nil && p.Budget == nil &&
		len(p.Allergies) == 0 && len(p.Likes) == 0 && len(p.Dislikes) == 0 &&
		len(p.DietaryRestrictions) == 0
}

// MealEntry represents a single meal within a day plan.
type MealEntry struct {
	Name        string    `json:"name"`
	Ingredients []string  `json:"ingredients"`
	Nutrition   Nutrition `json:"nutrition"`
	Cost        float64   `json:"cost"`
	PrepTime    string    `json:"prep_time,omitempty"`
}

// MealSlot holds the meals for one slot. LLM plans emit a single object for
// breakfast/lunch/dinner and an array for snacks; both decode into a slice.
type MealSlot []MealEntry

func (s *MealSlot) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var entries []MealEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return err
		}
		*s = entries
		return nil
	}
	var entry MealEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return err
	}
	*s = MealSlot{entry}
	return nil
}

// DayPlan represents one day's meals keyed by slot name. The snacks slot may
// hold multiple entries; the other slots normally hold one.
type DayPlan struct {
	Day            string              `json:"day"`
	Meals          map[string]MealSlot `json:"meals"`
	TotalNutrition Nutrition           `json:"total_nutrition"`
	TotalCost      float64             `json:"total_cost"`
}

// SumNutrition recomputes the day's nutrition from its meals. Upstream totals
// are never trusted.
func (d DayPlan) SumNutrition() Nutrition {
	var total Nutrition
	for _, entries := range d.Meals {
		for _, meal := range entries {
			total.Add(meal.Nutrition)
		}
	}
	return total
}

// SumCost recomputes the day's cost from its meals.
func (d DayPlan) SumCost() float64 {
	var total float64
	for _, entries := range d.Meals {
		for _, meal := range entries {
			total += meal.Cost
		}
	}
	return total
}

// IsValid checks if the DayPlan meets basic validation requirements.
func (d DayPlan) IsValid() bool {
	if d.Day == "" || len(d.Meals) == 0 {
		return false
	}
	for slot, entries := range d.Meals {
		if strings.TrimSpace(slot) == "" || len(entries) == 0 {
			return false
		}
		for _, meal := range entries {
			if meal.Name == "" || meal.Cost < 0 {
				return false
			}
		}
	}
	return true
}

// ShoppingItem is one aggregated line on the shopping list.
type ShoppingItem struct {
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	Category       string  `json:"category"`
	EstimatedPrice float64 `json:"estimated_price"`
	Store          string  `json:"store,omitempty"`
	Note           string  `json:"note,omitempty"`
}

// ShoppingListResult is the output of the shopping-list stage.
type ShoppingListResult struct {
	Items       []ShoppingItem            `json:"items"`
	Categorized map[string][]ShoppingItem `json:"categorized_list"`
	TotalItems  int                       `json:"total_items"`
	TotalCost   float64                   `json:"total_cost"`
}

// DailyNutrition pairs a day label with its recomputed nutrition totals.
type DailyNutrition struct {
	Day       string    `json:"day"`
	Nutrition Nutrition `json:"nutrition"`
}

// NutritionResult is the output of the nutrition-analysis stage.
type NutritionResult struct {
	Daily           []DailyNutrition `json:"daily_nutrition"`
	WeeklyTotals    Nutrition        `json:"weekly_totals"`
	WeeklyAverages  Nutrition        `json:"weekly_averages"`
	Recommendations []string         `json:"recommendations"`
}

// DietReport is the assembled report: plan, shopping list, nutrition summary,
// and recommendations. Aggregate figures are recomputed from leaf data.
type DietReport struct {
	ID                 string             `json:"id"`
	UserInfo           Preferences        `json:"user_info"`
	MealPlan           []DayPlan          `json:"meal_plan"`
	ShoppingList       ShoppingListResult `json:"shopping_list"`
	TotalWeeklyCost    float64            `json:"total_weekly_cost"`
	NutritionalSummary NutritionResult    `json:"nutritional_summary"`
	Recommendations    []string           `json:"recommendations"`
	GeneratedAt        time.Time          `json:"generated_date"`
}
