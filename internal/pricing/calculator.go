// Package pricing derives tax, discount, retail and promotion prices from a
// base unit price.
package pricing

import (
	"math"
	"strings"

	"github.com/sells-group/pricelist-cli/internal/model"
)

// Retail markup multipliers applied over the tax-inclusive list price.
const (
	Markup15 = 1.5
	Markup16 = 1.6
	Markup17 = 1.7
	Markup18 = 1.8
)

// Compute returns every derived price for unitBasePrice under cfg.
// It is pure and total: margins over a zero net cost are reported as 0.
func Compute(unitBasePrice float64, cfg model.DiscountConfig) model.DerivedPrices {
	listInclTax := unitBasePrice * (1 + cfg.TaxPercent/100)
	netCost := listInclTax * (1 - cfg.WholesaleDiscount1Percent/100)

	retail15 := listInclTax * Markup15
	retail16 := listInclTax * Markup16
	retail17 := listInclTax * Markup17
	retail18 := listInclTax * Markup18

	return model.DerivedPrices{
		ListPriceExclTax:     unitBasePrice,
		ListPriceInclTax:     listInclTax,
		NetCostInclTax:       netCost,
		ResellerCatalogPrice: listInclTax * (1 + cfg.WholesaleDiscount2Percent/100),
		WholesalePrice:       listInclTax * (1 + cfg.WholesaleDiscount3Percent/100),
		RetailPrice15:        retail15,
		RetailPrice16:        retail16,
		RetailPrice17:        retail17,
		RetailPrice18:        retail18,
		RetailMargin15:       Margin(retail15, netCost),
		RetailMargin16:       Margin(retail16, netCost),
		RetailMargin17:       Margin(retail17, netCost),
		RetailMargin18:       Margin(retail18, netCost),
		// Bundle rule: 2x1 charges four net costs, 3x1 charges six.
		Promo2x1:     netCost * 2 * 2,
		Promo3x1:     netCost * 2 * 3,
		PricePerUnit: retail18,
	}
}

// Margin returns the markup of sale over cost as a percentage.
// A zero cost or a non-finite result yields 0.
func Margin(sale, cost float64) float64 {
	return Percent(sale-cost, cost)
}

// Percent returns part/base*100, or 0 when base is zero or the result is not finite.
func Percent(part, base float64) float64 {
	if base == 0 {
		return 0
	}
	p := part / base * 100
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}

// Wholesale builds the wholesale sheet row for item.
func Wholesale(item model.Item, cfg model.DiscountConfig) model.WholesaleRow {
	p := Compute(item.UnitBasePrice, cfg)
	return model.WholesaleRow{
		Code:                 item.Code,
		Description:          item.Description,
		CatalogPrice:         p.ResellerCatalogPrice,
		WholesalePrice:       p.WholesalePrice,
		SuggestedRetailPrice: p.RetailPrice18,
		CatalogMargin:        Margin(p.ResellerCatalogPrice, p.NetCostInclTax),
		WholesaleMargin:      Margin(p.WholesalePrice, p.NetCostInclTax),
		NetCost:              p.NetCostInclTax,
	}
}

// Lookup finds an item by code, ignoring surrounding spaces and case.
func Lookup(list *model.PriceList, code string) (*model.Item, bool) {
	code = strings.TrimSpace(code)
	if list == nil || code == "" {
		return nil, false
	}
	for i := range list.Items {
		if strings.EqualFold(list.Items[i].Code, code) {
			item := list.Items[i]
			return &item, true
		}
	}
	return nil, false
}

// Search returns the items whose code or description contains query,
// case-insensitively. An empty query matches everything.
func Search(list *model.PriceList, query string) []model.Item {
	if list == nil {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Item, 0, len(list.Items))
	for _, it := range list.Items {
		if q == "" ||
			strings.Contains(strings.ToLower(it.Code), q) ||
			strings.Contains(strings.ToLower(it.Description), q) {
			out = append(out, it)
		}
	}
	return out
}

// WholesaleSheet computes the wholesale rows for every item matching query.
func WholesaleSheet(list *model.PriceList, query string, cfg model.DiscountConfig) []model.WholesaleRow {
	items := Search(list, query)
	rows := make([]model.WholesaleRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, Wholesale(it, cfg))
	}
	return rows
}
