package report

import "strings"

// Shopping list category taxonomy.
const (
	CategoryProteins   = "proteins"
	CategoryVegetables = "vegetables"
	CategoryFruits     = "fruits"
	CategoryGrains     = "grains"
	CategoryDairy      = "dairy"
	CategoryPantry     = "pantry"
	CategoryOther      = "other"
)

// categoryKeywords maps ingredient keywords to categories. First match wins;
// anything unmatched falls into "other". Fixed policy, not LLM-generated.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryProteins, []string{
		"chicken", "beef", "pork", "turkey", "fish", "salmon", "tuna", "shrimp",
		"egg", "tofu", "tempeh", "lentil", "bean", "chickpea",
	}},
	{CategoryDairy, []string{
		"milk", "cheese", "yogurt", "butter", "cream", "mozzarella", "parmesan",
	}},
	{CategoryVegetables, []string{
		"lettuce", "spinach", "tomato", "cucumber", "carrot", "broccoli",
		"pepper", "onion", "garlic", "zucchini", "mushroom", "cabbage",
		"celery", "kale", "basil",
	}},
	{CategoryFruits, []string{
		"apple", "banana", "berries", "berry", "orange", "lemon", "grape",
		"mango", "avocado", "melon", "peach",
	}},
	{CategoryGrains, []string{
		"rice", "pasta", "bread", "oat", "quinoa", "flour", "tortilla",
		"cereal", "noodle", "couscous",
	}},
	{CategoryPantry, []string{
		"oil", "salt", "sugar", "honey", "vinegar", "sauce", "spice", "herb",
		"stock", "broth", "mustard", "mayo",
	}},
}

// Categorize classifies an ingredient name into exactly one category.
func Categorize(ingredient string) string {
	name := strings.ToLower(ingredient)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(name, kw) {
				return entry.category
			}
		}
	}
	return CategoryOther
}
