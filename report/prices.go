package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"dietagent/tools/storage"
)

// PriceTable maps shopping categories to per-unit estimated prices.
type PriceTable map[string]float64

// DefaultPriceTable returns the built-in per-category unit prices (EUR).
func DefaultPriceTable() PriceTable {
	return PriceTable{
		CategoryProteins:   4.50,
		CategoryVegetables: 1.20,
		CategoryFruits:     1.50,
		CategoryGrains:     1.00,
		CategoryDairy:      1.80,
		CategoryPantry:     2.00,
		CategoryOther:      2.50,
	}
}

// UnitPrice returns the unit price for a category, falling back to the
// "other" price for unknown categories.
func (pt PriceTable) UnitPrice(category string) float64 {
	if price, ok := pt[category]; ok {
		return price
	}
	return pt[CategoryOther]
}

// LoadPriceTable reads category unit prices from a price-table artifact,
// overlaying them onto the defaults. A missing or unreadable artifact is not
// fatal; the defaults are returned.
func LoadPriceTable(ctx context.Context, state storage.PriceTableState) PriceTable {
	table := DefaultPriceTable()
	if state == nil {
		return table
	}

	b, err := state.Load(ctx)
	if err != nil {
		slog.Warn("REPORT: Price table artifact unavailable, using defaults", "error", err)
		return table
	}

	var artifact struct {
		UnitPrices map[string]float64 `json:"unit_prices"`
	}
	if err := json.Unmarshal(b, &artifact); err != nil {
		slog.Warn("REPORT: Price table artifact unreadable, using defaults", "error", fmt.Errorf("parse price table: %w", err))
		return table
	}

	for category, price := range artifact.UnitPrices {
		if price > 0 {
			table[category] = price
		}
	}
	return table
}
