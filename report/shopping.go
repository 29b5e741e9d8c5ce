package report

import (
	"sort"
	"strings"

	"dietagent"
)

// BuildShoppingList aggregates distinct ingredients across all meals of all
// days (case-insensitive, occurrence count as quantity), classifies each into
// exactly one category, and prices it as quantity x category unit price.
func BuildShoppingList(plan []dietagent.DayPlan, location string, prices PriceTable) dietagent.ShoppingListResult {
	type slot struct {
		display string
		count   int
	}
	counts := map[string]*slot{}
	order := make([]string, 0)

	for _, day := range plan {
		for _, entries := range day.Meals {
			for _, meal := range entries {
				for _, ingredient := range meal.Ingredients {
					name := strings.TrimSpace(ingredient)
					if name == "" {
						continue
					}
					key := strings.ToLower(name)
					if s, ok := counts[key]; ok {
						s.count++
						continue
					}
					counts[key] = &slot{display: name, count: 1}
					order = append(order, key)
				}
			}
		}
	}

	storeLabel := "Local Supermarket"
	if location != "" {
		storeLabel = "Local Supermarket, " + location
	}

	items := make([]dietagent.ShoppingItem, 0, len(order))
	var totalCost float64
	for _, key := range order {
		s := counts[key]
		category := Categorize(s.display)
		price := float64(s.count) * prices.UnitPrice(category)
		totalCost += price
		items = append(items, dietagent.ShoppingItem{
			Name:           s.display,
			Quantity:       s.count,
			Category:       category,
			EstimatedPrice: price,
			Store:          storeLabel,
		})
	}

	categorized := make(map[string][]dietagent.ShoppingItem)
	for _, item := range items {
		categorized[item.Category] = append(categorized[item.Category], item)
	}
	for category := range categorized {
		sort.Slice(categorized[category], func(i, j int) bool {
			return categorized[category][i].Name < categorized[category][j].Name
		})
	}

	return dietagent.ShoppingListResult{
		Items:       items,
		Categorized: categorized,
		TotalItems:  len(items),
		TotalCost:   totalCost,
	}
}
