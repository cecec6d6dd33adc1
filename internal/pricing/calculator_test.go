package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pricelist-cli/internal/model"
)

func stockDiscounts() model.DiscountConfig {
	return model.DiscountConfig{
		TaxPercent:                21,
		WholesaleDiscount1Percent: 15,
		WholesaleDiscount2Percent: 25,
		WholesaleDiscount3Percent: 35,
	}
}

func TestCompute_WorkedExample(t *testing.T) {
	p := Compute(100, stockDiscounts())

	assert.InDelta(t, 100.0, p.ListPriceExclTax, 1e-9)
	assert.InDelta(t, 121.0, p.ListPriceInclTax, 1e-9)
	assert.InDelta(t, 102.85, p.NetCostInclTax, 1e-9)
	assert.InDelta(t, 151.25, p.ResellerCatalogPrice, 1e-9)
	assert.InDelta(t, 163.35, p.WholesalePrice, 1e-9)
	assert.InDelta(t, 411.4, p.Promo2x1, 1e-9)
	assert.InDelta(t, 617.1, p.Promo3x1, 1e-9)

	assert.InDelta(t, 181.5, p.RetailPrice15, 1e-9)
	assert.InDelta(t, 193.6, p.RetailPrice16, 1e-9)
	assert.InDelta(t, 205.7, p.RetailPrice17, 1e-9)
	assert.InDelta(t, 217.8, p.RetailPrice18, 1e-9)
	assert.Equal(t, p.RetailPrice18, p.PricePerUnit)

	// (181.5 - 102.85) / 102.85 * 100
	assert.InDelta(t, 76.4706, p.RetailMargin15, 1e-3)
	assert.InDelta(t, 111.7647, p.RetailMargin18, 1e-3)
}

func TestCompute_PromoIdentities(t *testing.T) {
	for _, base := range []float64{0, 0.01, 1, 99.99, 100, 1234.56, 1e6} {
		p := Compute(base, stockDiscounts())
		assert.Equal(t, p.NetCostInclTax*4, p.Promo2x1, "base %v", base)
		assert.Equal(t, p.NetCostInclTax*6, p.Promo3x1, "base %v", base)
	}
}

func TestCompute_NetCostNeverAboveListPrice(t *testing.T) {
	for _, base := range []float64{0, 1, 50, 100, 2500.75} {
		for _, d1 := range []float64{0, 5, 15, 50, 100} {
			cfg := stockDiscounts()
			cfg.WholesaleDiscount1Percent = d1
			p := Compute(base, cfg)
			assert.LessOrEqual(t, p.NetCostInclTax, p.ListPriceInclTax, "base %v d1 %v", base, d1)
		}
	}
}

func TestCompute_RetailOrdering(t *testing.T) {
	for _, base := range []float64{0, 3.5, 100, 9999} {
		p := Compute(base, stockDiscounts())
		assert.GreaterOrEqual(t, p.RetailPrice18, p.RetailPrice17)
		assert.GreaterOrEqual(t, p.RetailPrice17, p.RetailPrice16)
		assert.GreaterOrEqual(t, p.RetailPrice16, p.RetailPrice15)
	}
}

func TestCompute_ZeroNetCostKeepsMarginsFinite(t *testing.T) {
	cases := map[string]struct {
		base float64
		cfg  model.DiscountConfig
	}{
		"zero base price":       {base: 0, cfg: stockDiscounts()},
		"full discount":         {base: 100, cfg: model.DiscountConfig{TaxPercent: 21, WholesaleDiscount1Percent: 100}},
		"tax cancels the price": {base: 100, cfg: model.DiscountConfig{TaxPercent: -100}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := Compute(tc.base, tc.cfg)
			for _, v := range []float64{p.RetailMargin15, p.RetailMargin16, p.RetailMargin17, p.RetailMargin18} {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
				assert.Zero(t, v)
			}
		})
	}
}

func TestCompute_OutOfRangePercentagesAccepted(t *testing.T) {
	p := Compute(100, model.DiscountConfig{TaxPercent: 150, WholesaleDiscount1Percent: 120})
	assert.InDelta(t, 250.0, p.ListPriceInclTax, 1e-9)
	assert.InDelta(t, -50.0, p.NetCostInclTax, 1e-9)
}

func TestMargin(t *testing.T) {
	assert.InDelta(t, 50.0, Margin(150, 100), 1e-9)
	assert.InDelta(t, -25.0, Margin(75, 100), 1e-9)
	assert.Zero(t, Margin(10, 0))
	assert.Zero(t, Margin(math.Inf(1), 10))
}

func TestPercent(t *testing.T) {
	assert.InDelta(t, 10.0, Percent(10, 100), 1e-9)
	assert.Zero(t, Percent(10, 0))
	assert.Zero(t, Percent(math.NaN(), 1))
}

func TestWholesale(t *testing.T) {
	row := Wholesale(model.Item{Code: "A1", Description: "Remera", UnitBasePrice: 100}, stockDiscounts())

	assert.Equal(t, "A1", row.Code)
	assert.Equal(t, "Remera", row.Description)
	assert.InDelta(t, 151.25, row.CatalogPrice, 1e-9)
	assert.InDelta(t, 163.35, row.WholesalePrice, 1e-9)
	assert.InDelta(t, 217.8, row.SuggestedRetailPrice, 1e-9)
	assert.InDelta(t, 102.85, row.NetCost, 1e-9)
	assert.InDelta(t, (151.25-102.85)/102.85*100, row.CatalogMargin, 1e-9)
	assert.InDelta(t, (163.35-102.85)/102.85*100, row.WholesaleMargin, 1e-9)
}

func TestLookup(t *testing.T) {
	list := &model.PriceList{Items: []model.Item{
		{Code: "ART001", UnitBasePrice: 10},
		{Code: "art002", UnitBasePrice: 20},
	}}

	item, ok := Lookup(list, "  art001 ")
	require.True(t, ok)
	assert.Equal(t, "ART001", item.Code)

	item, ok = Lookup(list, "ART002")
	require.True(t, ok)
	assert.InDelta(t, 20.0, item.UnitBasePrice, 1e-9)

	_, ok = Lookup(list, "missing")
	assert.False(t, ok)
	_, ok = Lookup(list, "   ")
	assert.False(t, ok)
	_, ok = Lookup(nil, "ART001")
	assert.False(t, ok)
}

func TestLookup_ReturnsCopy(t *testing.T) {
	list := &model.PriceList{Items: []model.Item{{Code: "A", UnitBasePrice: 1}}}
	item, ok := Lookup(list, "A")
	require.True(t, ok)
	item.UnitBasePrice = 99
	assert.InDelta(t, 1.0, list.Items[0].UnitBasePrice, 1e-9)
}

func TestSearch(t *testing.T) {
	list := &model.PriceList{Items: []model.Item{
		{Code: "MA-100", Description: "Malla enteriza"},
		{Code: "RE-200", Description: "Remera lisa"},
		{Code: "RE-300", Description: "Remera estampada"},
	}}

	assert.Len(t, Search(list, ""), 3)
	assert.Len(t, Search(list, "remera"), 2)
	assert.Len(t, Search(list, "ma-1"), 1)
	assert.Empty(t, Search(list, "zapato"))
	assert.Nil(t, Search(nil, "x"))
}

func TestWholesaleSheet(t *testing.T) {
	list := &model.PriceList{Items: []model.Item{
		{Code: "A", Description: "uno", UnitBasePrice: 100},
		{Code: "B", Description: "dos", UnitBasePrice: 200},
	}}

	rows := WholesaleSheet(list, "dos", stockDiscounts())
	require.Len(t, rows, 1)
	assert.Equal(t, "B", rows[0].Code)
	assert.InDelta(t, 302.5, rows[0].CatalogPrice, 1e-9)
}
