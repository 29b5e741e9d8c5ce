package tools

import (
	"context"
	"testing"

	"dietagent/tools/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStoreCatalog = `{
	"stores": [
		{"name": "Berlin Bio Markt", "address": "Kastanienallee 3", "city": "Berlin", "rating": 4.5, "distance_km": 0.8, "store_types": ["supermarket", "organic"]},
		{"name": "Berlin Discounter", "address": "Frankfurter Allee 100", "city": "Berlin", "rating": 3.9, "distance_km": 1.5, "store_types": ["grocery_store"]},
		{"name": "Hamburg Markthalle", "address": "Deichstrasse 9", "city": "Hamburg", "rating": 4.2, "distance_km": 0.3, "store_types": ["supermarket"]}
	]
}`

func TestStoreSearch_Run(t *testing.T) {
	tests := []struct {
		name          string
		state         storage.StoreCatalogState
		input         map[string]any
		expectedNames []string
	}{
		{
			name:          "filters by city",
			state:         storage.NewTestStoreCatalogState([]byte(testStoreCatalog)),
			input:         map[string]any{"location": "Berlin, Germany"},
			expectedNames: []string{"Berlin Bio Markt", "Berlin Discounter"},
		},
		{
			name:  "filters by store type",
			state: storage.NewTestStoreCatalogState([]byte(testStoreCatalog)),
			input: map[string]any{
				"location":    "Berlin",
				"store_types": []any{"organic"},
			},
			expectedNames: []string{"Berlin Bio Markt"},
		},
		{
			name:          "no city match degrades to placeholders",
			state:         storage.NewTestStoreCatalogState([]byte(testStoreCatalog)),
			input:         map[string]any{"location": "Munich"},
			expectedNames: []string{"Local Supermarket", "Discount Grocery"},
		},
		{
			name:          "catalog load failure degrades to placeholders",
			state:         storage.NewTestStoreCatalogStateWithError(),
			input:         map[string]any{"location": "Berlin"},
			expectedNames: []string{"Local Supermarket", "Discount Grocery"},
		},
		{
			name:          "unparseable catalog degrades to placeholders",
			state:         storage.NewTestStoreCatalogState([]byte("not json")),
			input:         map[string]any{"location": "Berlin"},
			expectedNames: []string{"Local Supermarket", "Discount Grocery"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := NewStoreSearch(tt.state, newLookupCache())

			result, err := tool.Run(context.Background(), tt.input)
			require.NoError(t, err)

			stores, ok := result["stores"].([]any)
			require.True(t, ok, "stores should be a JSON array")
			require.Len(t, stores, len(tt.expectedNames))
			for i, want := range tt.expectedNames {
				entry, ok := stores[i].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, want, entry["name"])
			}
		})
	}
}

func TestStoreSearchCachesLookups(t *testing.T) {
	// First call warms the cache; flipping the backing state to an error
	// afterwards must not change the result.
	state := storage.NewTestStoreCatalogState([]byte(testStoreCatalog))
	cache := newLookupCache()
	tool := NewStoreSearch(state, cache)

	first, err := tool.Run(context.Background(), map[string]any{"location": "Berlin"})
	require.NoError(t, err)

	broken := NewStoreSearch(storage.NewTestStoreCatalogStateWithError(), cache)
	second, err := broken.Run(context.Background(), map[string]any{"location": "berlin"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRecipeSearch_Run(t *testing.T) {
	tool := NewRecipeSearch(newLookupCache())

	result, err := tool.Run(context.Background(), map[string]any{
		"query":                "lentil curry",
		"dietary_restrictions": []any{"vegetarian"},
	})
	require.NoError(t, err)

	recipes, ok := result["recipes"].([]any)
	require.True(t, ok)
	require.Len(t, recipes, 2)

	first, ok := recipes[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Simple Lentil Curry", first["title"])
	assert.Equal(t, []any{"vegetarian"}, first["tags"])

	second, ok := recipes[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Quick Lentil Curry Bowl", second["title"])
}

func TestCouponSearch_Run(t *testing.T) {
	tests := []struct {
		name                string
		input               map[string]any
		expectedDescription string
	}{
		{
			name:                "explicit category",
			input:               map[string]any{"store_name": "Local Supermarket", "category": "produce"},
			expectedDescription: "10% off produce at Local Supermarket",
		},
		{
			name:                "category defaults to groceries",
			input:               map[string]any{"store_name": "Discount Grocery"},
			expectedDescription: "10% off groceries at Discount Grocery",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := NewCouponSearch(newLookupCache())

			result, err := tool.Run(context.Background(), tt.input)
			require.NoError(t, err)

			coupons, ok := result["coupons"].([]any)
			require.True(t, ok)
			require.Len(t, coupons, 2)

			first, ok := coupons[0].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.expectedDescription, first["description"])
			assert.Equal(t, "SAVE10", first["code"])

			second, ok := coupons[1].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "FIVE50", second["code"])
		})
	}
}

func TestPriceSearch_Run(t *testing.T) {
	table := `{
		"products": [
			{"name": "Chicken Breast 500g", "store": "Berlin Bio Markt", "price": 5.99, "unit": "pack", "availability": true},
			{"name": "Tofu", "store": "Berlin Discounter", "price": 1.79, "unit": "block", "availability": true}
		]
	}`

	tests := []struct {
		name           string
		state          storage.PriceTableState
		product        string
		expectedStores []string
		expectedPrices []float64
	}{
		{
			name:           "substring match against table",
			state:          storage.NewTestPriceTableState([]byte(table)),
			product:        "chicken",
			expectedStores: []string{"Berlin Bio Markt"},
			expectedPrices: []float64{5.99},
		},
		{
			name:           "unknown product falls back to placeholders",
			state:          storage.NewTestPriceTableState([]byte(table)),
			product:        "dragonfruit",
			expectedStores: []string{"Local Supermarket", "Discount Grocery"},
			expectedPrices: []float64{2.49, 1.99},
		},
		{
			name:           "table load failure falls back to placeholders",
			state:          storage.NewTestPriceTableStateWithError(),
			product:        "tofu",
			expectedStores: []string{"Local Supermarket", "Discount Grocery"},
			expectedPrices: []float64{2.49, 1.99},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := NewPriceSearch(tt.state, newLookupCache())

			result, err := tool.Run(context.Background(), map[string]any{"product_name": tt.product})
			require.NoError(t, err)

			products, ok := result["products"].([]any)
			require.True(t, ok)
			require.Len(t, products, len(tt.expectedStores))
			for i := range tt.expectedStores {
				row, ok := products[i].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, tt.expectedStores[i], row["store"])
				assert.Equal(t, tt.expectedPrices[i], row["price"])
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Lentil Curry", titleCase("lentil curry"))
	assert.Equal(t, "Tofu", titleCase("tofu"))
	assert.Equal(t, "", titleCase(""))
}
