package report

import (
	"fmt"
	"io"
	"time"

	"github.com/sells-group/pricelist-cli/internal/fetcher"
	"github.com/sells-group/pricelist-cli/internal/model"
)

var (
	comparisonHeader = []string{"Código", "Descripción", "Precio Actual", "Precio Anterior", "Incremento ($)", "Incremento (%)"}
	wholesaleHeader  = []string{"Código", "Descripción", "Precio Vta. Catálogo", "Precio Vta. Mayorista", "Precio Venta Sugerido Público"}
)

// ComparisonSheet lays out comparison rows for export. Amounts are rounded
// to two decimals.
func ComparisonSheet(rows []model.ComparisonRow) fetcher.Sheet {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{r.Code, r.Description, Round2(r.CurrentPrice), Round2(r.PriorPrice), Round2(r.Delta), Round2(r.DeltaPercent)}
	}
	return fetcher.Sheet{Name: "Comparativo", Header: comparisonHeader, Rows: out}
}

// WholesaleSheet lays out the wholesale sheet for export.
func WholesaleSheet(rows []model.WholesaleRow) fetcher.Sheet {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{r.Code, r.Description, Round2(r.CatalogPrice), Round2(r.WholesalePrice), Round2(r.SuggestedRetailPrice)}
	}
	return fetcher.Sheet{Name: "Lista Mayoristas", Header: wholesaleHeader, Rows: out}
}

// ExportComparison writes the comparison workbook to w.
func ExportComparison(w io.Writer, rows []model.ComparisonRow) error {
	return fetcher.WriteXLSX(w, ComparisonSheet(rows))
}

// ExportWholesale writes the wholesale workbook to w.
func ExportWholesale(w io.Writer, rows []model.WholesaleRow) error {
	return fetcher.WriteXLSX(w, WholesaleSheet(rows))
}

// ExportName returns the default export file name for prefix on day t,
// e.g. "Comparativo_Precios_5-3-2024.xlsx".
func ExportName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%d-%d-%d.xlsx", prefix, t.Day(), int(t.Month()), t.Year())
}

// Export file name prefixes.
const (
	ComparisonExportPrefix = "Comparativo_Precios"
	WholesaleExportPrefix  = "Lista_Mayoristas"
)
