package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/pricelist-cli/internal/compare"
	"github.com/sells-group/pricelist-cli/internal/model"
	"github.com/sells-group/pricelist-cli/internal/pricing"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "TABLE": FormatTable, "json": FormatJSON, "yml": FormatYAML, " yaml ": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestMoney(t *testing.T) {
	f := DefaultFormatter()
	assert.Equal(t, "$ 1.234,50", f.Money(1234.5))
	assert.Equal(t, "$ 121,00", f.Money(121))
	assert.Equal(t, "$ 102,85", f.Money(102.85))
}

func TestNewFormatter(t *testing.T) {
	f, err := NewFormatter("en-US", "USD")
	require.NoError(t, err)
	assert.Equal(t, "$ 1,234.50", f.Money(1234.5))

	_, err = NewFormatter("es-AR", "NOPE")
	assert.Error(t, err)
	_, err = NewFormatter("!!", "ARS")
	assert.Error(t, err)
}

func TestPercentAndRound(t *testing.T) {
	assert.Equal(t, "12.34%", Percent(12.3389))
	assert.Equal(t, "-20.00%", Percent(-20))
	assert.InDelta(t, 1.01, Round2(1.005), 1e-9)
	assert.InDelta(t, -1.01, Round2(-1.005), 1e-9)
	assert.InDelta(t, 411.4, Round2(411.40000000000003), 1e-12)
}

func TestEncode(t *testing.T) {
	row := model.ComparisonRow{Code: "A001", CurrentPrice: 110, PriorPrice: 100, Delta: 10, DeltaPercent: 10}

	var js bytes.Buffer
	require.NoError(t, Encode(&js, FormatJSON, row))
	assert.Contains(t, js.String(), `"deltaPercent": 10`)

	var ym bytes.Buffer
	require.NoError(t, Encode(&ym, FormatYAML, row))
	var back map[string]any
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &back))
	assert.Equal(t, "A001", back["code"])
	assert.Equal(t, 10, back["delta_percent"])

	assert.Error(t, Encode(&js, FormatTable, row))
}

func TestQuoteTable(t *testing.T) {
	it := model.Item{Code: "A001", Description: "Remera", UnitBasePrice: 100}
	q := &model.Quote{Item: it, Prices: pricing.Compute(100, model.DefaultDiscounts())}

	var buf bytes.Buffer
	DefaultFormatter().Quote(&buf, q)
	out := buf.String()
	assert.Contains(t, out, "A001")
	assert.Contains(t, out, "$ 121,00")
	assert.Contains(t, out, "$ 411,40")
	assert.Contains(t, out, "$ 617,10")
}

func TestComparisonTable(t *testing.T) {
	cur := &model.PriceList{Name: "Marzo", Items: []model.Item{{Code: "A001", Description: "Remera", UnitBasePrice: 110}}}
	prior := &model.PriceList{Name: "Febrero", Items: []model.Item{{Code: "A001", UnitBasePrice: 100}}}
	res := compare.Lists(cur, prior, compare.SortByCode, compare.Asc)

	var buf bytes.Buffer
	DefaultFormatter().Comparison(&buf, cur.Summary(), prior.Summary(), res)
	out := buf.String()
	assert.Contains(t, out, "Marzo")
	assert.Contains(t, out, "10.00%")
	assert.Contains(t, out, "Con aumento:")

	buf.Reset()
	DefaultFormatter().Comparison(&buf, cur.Summary(), prior.Summary(), compare.Result{})
	assert.Contains(t, buf.String(), "No hay artículos en común")
}

func TestListsAndSnapshot(t *testing.T) {
	d, err := model.ParseDate("2024-03-01")
	require.NoError(t, err)
	latest := model.PriceList{ID: "0123456789abcdef", Name: "Marzo", EffectiveDate: &d, CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), Items: []model.Item{{Code: "A"}}}
	prev := model.PriceList{ID: "p", Name: "Febrero"}

	var buf bytes.Buffer
	Snapshot(&buf, &model.Snapshot{Latest: &latest, Previous: []model.PriceList{prev}})
	out := buf.String()
	assert.Contains(t, out, "01234567 ")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "Previous:")
	assert.Contains(t, out, "Febrero")

	buf.Reset()
	Snapshot(&buf, &model.Snapshot{})
	assert.Equal(t, "No price lists loaded.\n", buf.String())
}

func TestItemsTable(t *testing.T) {
	var buf bytes.Buffer
	DefaultFormatter().Items(&buf, []model.Item{{Code: "A", Description: strings.Repeat("x", 60), UnitBasePrice: 10}})
	out := buf.String()
	assert.Contains(t, out, "$ 10,00")
	assert.Contains(t, out, "...")
}

func TestExportComparison(t *testing.T) {
	rows := []model.ComparisonRow{{Code: "A001", Description: "Remera", CurrentPrice: 110.456, PriorPrice: 100, Delta: 10.456, DeltaPercent: 10.456}}

	var buf bytes.Buffer
	require.NoError(t, ExportComparison(&buf, rows))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	sheet := f.Sheets[0]
	assert.Equal(t, "Comparativo", sheet.Name)
	assert.Equal(t, "Incremento (%)", sheet.Rows[0].Cells[5].String())
	assert.Equal(t, "A001", sheet.Rows[1].Cells[0].String())

	v, err := sheet.Rows[1].Cells[2].Float()
	require.NoError(t, err)
	assert.InDelta(t, 110.46, v, 1e-9)
}

func TestWholesaleSheet(t *testing.T) {
	rows := pricing.WholesaleSheet(&model.PriceList{Items: []model.Item{{Code: "A001", Description: "Remera", UnitBasePrice: 100}}}, "", model.DefaultDiscounts())
	sheet := WholesaleSheet(rows)
	assert.Equal(t, wholesaleHeader, sheet.Header)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "A001", sheet.Rows[0][0])
	assert.InDelta(t, 151.25, sheet.Rows[0][2].(float64), 1e-9)
	assert.InDelta(t, 163.35, sheet.Rows[0][3].(float64), 1e-9)

	var buf bytes.Buffer
	require.NoError(t, ExportWholesale(&buf, rows))
	assert.NotZero(t, buf.Len())
}

func TestExportName(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Comparativo_Precios_5-3-2024.xlsx", ExportName(ComparisonExportPrefix, day))
	assert.Equal(t, "Lista_Mayoristas_5-3-2024.xlsx", ExportName(WholesaleExportPrefix, day))
}
