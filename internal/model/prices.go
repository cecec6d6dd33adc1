package model

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// DiscountConfig holds the tax rate and the three wholesale discount tiers,
// all as percentages. Values are not clamped.
type DiscountConfig struct {
	TaxPercent                float64 `json:"taxPercent" yaml:"tax_percent" mapstructure:"tax_percent"`
	WholesaleDiscount1Percent float64 `json:"wholesaleDiscount1Percent" yaml:"wholesale_discount1_percent" mapstructure:"wholesale_discount1_percent"`
	WholesaleDiscount2Percent float64 `json:"wholesaleDiscount2Percent" yaml:"wholesale_discount2_percent" mapstructure:"wholesale_discount2_percent"`
	WholesaleDiscount3Percent float64 `json:"wholesaleDiscount3Percent" yaml:"wholesale_discount3_percent" mapstructure:"wholesale_discount3_percent"`
}

// DefaultDiscounts returns the stock configuration: 21% VAT and 15/25/35 tiers.
func DefaultDiscounts() DiscountConfig {
	return DiscountConfig{
		TaxPercent:                21,
		WholesaleDiscount1Percent: 15,
		WholesaleDiscount2Percent: 25,
		WholesaleDiscount3Percent: 35,
	}
}

// Validate rejects NaN and infinite percentages.
func (c DiscountConfig) Validate() error {
	var bad []string
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"tax_percent", c.TaxPercent},
		{"wholesale_discount1_percent", c.WholesaleDiscount1Percent},
		{"wholesale_discount2_percent", c.WholesaleDiscount2Percent},
		{"wholesale_discount3_percent", c.WholesaleDiscount3Percent},
	} {
		if !IsFinite(f.v) {
			bad = append(bad, f.name)
		}
	}
	if len(bad) > 0 {
		return eris.Errorf("discounts: %s must be finite", strings.Join(bad, ", "))
	}
	return nil
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DerivedPrices is the full set of prices derived from one base price.
type DerivedPrices struct {
	ListPriceExclTax     float64 `json:"listPriceExclTax" yaml:"list_price_excl_tax"`
	ListPriceInclTax     float64 `json:"listPriceInclTax" yaml:"list_price_incl_tax"`
	NetCostInclTax       float64 `json:"netCostInclTax" yaml:"net_cost_incl_tax"`
	ResellerCatalogPrice float64 `json:"resellerCatalogPrice" yaml:"reseller_catalog_price"`
	WholesalePrice       float64 `json:"wholesalePrice" yaml:"wholesale_price"`
	RetailPrice15        float64 `json:"retailPrice15" yaml:"retail_price_15"`
	RetailPrice16        float64 `json:"retailPrice16" yaml:"retail_price_16"`
	RetailPrice17        float64 `json:"retailPrice17" yaml:"retail_price_17"`
	RetailPrice18        float64 `json:"retailPrice18" yaml:"retail_price_18"`
	RetailMargin15       float64 `json:"retailMargin15" yaml:"retail_margin_15"`
	RetailMargin16       float64 `json:"retailMargin16" yaml:"retail_margin_16"`
	RetailMargin17       float64 `json:"retailMargin17" yaml:"retail_margin_17"`
	RetailMargin18       float64 `json:"retailMargin18" yaml:"retail_margin_18"`
	Promo2x1             float64 `json:"promo2x1" yaml:"promo_2x1"`
	Promo3x1             float64 `json:"promo3x1" yaml:"promo_3x1"`
	PricePerUnit         float64 `json:"pricePerUnit" yaml:"price_per_unit"`
}

// Quote pairs an item with its derived prices.
type Quote struct {
	Item   Item          `json:"item" yaml:"item"`
	Prices DerivedPrices `json:"prices" yaml:"prices"`
}

// WholesaleRow is one line of the wholesale price sheet.
type WholesaleRow struct {
	Code                 string  `json:"code" yaml:"code"`
	Description          string  `json:"description" yaml:"description"`
	CatalogPrice         float64 `json:"catalogPrice" yaml:"catalog_price"`
	WholesalePrice       float64 `json:"wholesalePrice" yaml:"wholesale_price"`
	SuggestedRetailPrice float64 `json:"suggestedRetailPrice" yaml:"suggested_retail_price"`
	CatalogMargin        float64 `json:"catalogMargin" yaml:"catalog_margin"`
	WholesaleMargin      float64 `json:"wholesaleMargin" yaml:"wholesale_margin"`
	NetCost              float64 `json:"netCost" yaml:"net_cost"`
}

// ComparisonRow is the price change of one item code between two lists.
type ComparisonRow struct {
	Code         string  `json:"code" yaml:"code"`
	Description  string  `json:"description" yaml:"description"`
	CurrentPrice float64 `json:"currentPrice" yaml:"current_price"`
	PriorPrice   float64 `json:"priorPrice" yaml:"prior_price"`
	Delta        float64 `json:"delta" yaml:"delta"`
	DeltaPercent float64 `json:"deltaPercent" yaml:"delta_percent"`
}

// Stats aggregates a set of comparison rows.
type Stats struct {
	Total           int     `json:"total" yaml:"total"`
	CountIncreased  int     `json:"countIncreased" yaml:"count_increased"`
	CountDecreased  int     `json:"countDecreased" yaml:"count_decreased"`
	CountUnchanged  int     `json:"countUnchanged" yaml:"count_unchanged"`
	AvgDeltaPercent float64 `json:"avgDeltaPercent" yaml:"avg_delta_percent"`
	MaxDeltaPercent float64 `json:"maxDeltaPercent" yaml:"max_delta_percent"`
	MinDeltaPercent float64 `json:"minDeltaPercent" yaml:"min_delta_percent"`
}
