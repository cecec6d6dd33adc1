package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListKind_Valid(t *testing.T) {
	assert.True(t, ListKind("").Valid())
	assert.True(t, ListKindLinea.Valid())
	assert.True(t, ListKindMallas.Valid())
	assert.False(t, ListKind("other").Valid())
}

func TestPriceList_Summary(t *testing.T) {
	d := NewDate(time.Date(2025, 3, 1, 15, 4, 5, 0, time.UTC))
	l := &PriceList{
		ID:            "abc",
		Name:          "Lista Marzo",
		Kind:          ListKindLinea,
		EffectiveDate: &d,
		Items:         []Item{{Code: "A1"}, {Code: "A2"}},
	}

	s := l.Summary()
	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, "Lista Marzo", s.Name)
	assert.Equal(t, ListKindLinea, s.Kind)
	assert.Equal(t, 2, s.ItemCount)
	assert.Equal(t, "2025-03-01", s.EffectiveDate.String())
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(time.Date(2024, 12, 31, 23, 59, 0, 0, time.FixedZone("ART", -3*3600)))
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-12-31"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, d.Equal(back))
}

func TestDate_UnmarshalInvalid(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"31/12/2024"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`20241231`), &d))
}

func TestPriceList_NilEffectiveDateEncodesNull(t *testing.T) {
	b, err := json.Marshal(PriceList{ID: "x", Items: []Item{}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"effectiveDate":null`)
	assert.Contains(t, string(b), `"items":[]`)
}

func TestDefaultDiscounts(t *testing.T) {
	d := DefaultDiscounts()
	assert.InDelta(t, 21.0, d.TaxPercent, 1e-9)
	assert.InDelta(t, 15.0, d.WholesaleDiscount1Percent, 1e-9)
	assert.InDelta(t, 25.0, d.WholesaleDiscount2Percent, 1e-9)
	assert.InDelta(t, 35.0, d.WholesaleDiscount3Percent, 1e-9)
}

func TestDiscountConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultDiscounts().Validate())

	neg := DefaultDiscounts()
	neg.WholesaleDiscount1Percent = -5
	assert.NoError(t, neg.Validate())

	bad := DefaultDiscounts()
	bad.TaxPercent = math.NaN()
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tax_percent must be finite")

	assert.False(t, IsFinite(math.Inf(1)))
	assert.True(t, IsFinite(0))
}
