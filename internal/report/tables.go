package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sells-group/pricelist-cli/internal/compare"
	"github.com/sells-group/pricelist-cli/internal/model"
)

func newTabWriter(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

// Quote writes the derived prices of one item.
func (f *Formatter) Quote(out io.Writer, q *model.Quote) {
	w := newTabWriter(out)
	_, _ = fmt.Fprintf(w, "Código:\t%s\n", q.Item.Code)
	if q.Item.Description != "" {
		_, _ = fmt.Fprintf(w, "Descripción:\t%s\n", q.Item.Description)
	}
	if q.Item.Color != "" || q.Item.Size != "" {
		_, _ = fmt.Fprintf(w, "Color / Talle:\t%s / %s\n", q.Item.Color, q.Item.Size)
	}
	p := q.Prices
	_, _ = fmt.Fprintf(w, "Precio base:\t%s\n", f.Money(q.Item.UnitBasePrice))
	_, _ = fmt.Fprintf(w, "Lista sin IVA:\t%s\n", f.Money(p.ListPriceExclTax))
	_, _ = fmt.Fprintf(w, "Lista con IVA:\t%s\n", f.Money(p.ListPriceInclTax))
	_, _ = fmt.Fprintf(w, "Costo neto con IVA:\t%s\n", f.Money(p.NetCostInclTax))
	_, _ = fmt.Fprintf(w, "Precio catálogo revendedor:\t%s\n", f.Money(p.ResellerCatalogPrice))
	_, _ = fmt.Fprintf(w, "Precio mayorista:\t%s\n", f.Money(p.WholesalePrice))
	for _, r := range []struct {
		factor        string
		price, margin float64
	}{
		{"1.5", p.RetailPrice15, p.RetailMargin15},
		{"1.6", p.RetailPrice16, p.RetailMargin16},
		{"1.7", p.RetailPrice17, p.RetailMargin17},
		{"1.8", p.RetailPrice18, p.RetailMargin18},
	} {
		_, _ = fmt.Fprintf(w, "Público x%s:\t%s\t(margen %s)\n", r.factor, f.Money(r.price), Percent(r.margin))
	}
	_, _ = fmt.Fprintf(w, "Promo 2x1:\t%s\n", f.Money(p.Promo2x1))
	_, _ = fmt.Fprintf(w, "Promo 3x1:\t%s\n", f.Money(p.Promo3x1))
	_, _ = fmt.Fprintf(w, "Precio por unidad:\t%s\n", f.Money(p.PricePerUnit))
	_ = w.Flush()
}

// Wholesale writes the wholesale sheet.
func (f *Formatter) Wholesale(out io.Writer, rows []model.WholesaleRow) {
	w := newTabWriter(out)
	_, _ = fmt.Fprintln(w, "CÓDIGO\tDESCRIPCIÓN\tCATÁLOGO\tMAYORISTA\tSUGERIDO\tMARGEN CAT.\tMARGEN MAY.")
	_, _ = fmt.Fprintln(w, "------\t-----------\t--------\t---------\t--------\t-----------\t-----------")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Code,
			truncate(r.Description, 40),
			f.Money(r.CatalogPrice),
			f.Money(r.WholesalePrice),
			f.Money(r.SuggestedRetailPrice),
			Percent(r.CatalogMargin),
			Percent(r.WholesaleMargin),
		)
	}
	_ = w.Flush()
}

// Comparison writes the comparison rows followed by their statistics.
func (f *Formatter) Comparison(out io.Writer, current, prior model.ListSummary, res compare.Result) {
	_, _ = fmt.Fprintf(out, "Actual:   %s\nAnterior: %s\n\n", listTitle(current), listTitle(prior))

	w := newTabWriter(out)
	_, _ = fmt.Fprintln(w, "CÓDIGO\tDESCRIPCIÓN\tACTUAL\tANTERIOR\tINCREMENTO\tINCREMENTO %")
	_, _ = fmt.Fprintln(w, "------\t-----------\t------\t--------\t----------\t------------")
	for _, r := range res.Rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Code,
			truncate(r.Description, 40),
			f.Money(r.CurrentPrice),
			f.Money(r.PriorPrice),
			f.Money(r.Delta),
			Percent(r.DeltaPercent),
		)
	}
	_ = w.Flush()

	if res.Stats == nil {
		_, _ = fmt.Fprintln(out, "\nNo hay artículos en común entre las listas.")
		return
	}
	s := res.Stats
	w = newTabWriter(out)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Artículos comparados:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Con aumento:\t%d\n", s.CountIncreased)
	_, _ = fmt.Fprintf(w, "Con baja:\t%d\n", s.CountDecreased)
	_, _ = fmt.Fprintf(w, "Sin cambio:\t%d\n", s.CountUnchanged)
	_, _ = fmt.Fprintf(w, "Variación promedio:\t%s\n", Percent(s.AvgDeltaPercent))
	_, _ = fmt.Fprintf(w, "Variación máxima:\t%s\n", Percent(s.MaxDeltaPercent))
	_, _ = fmt.Fprintf(w, "Variación mínima:\t%s\n", Percent(s.MinDeltaPercent))
	_ = w.Flush()
}

// Lists writes one line per list header.
func Lists(out io.Writer, lists []model.ListSummary) {
	w := newTabWriter(out)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tKIND\tEFFECTIVE\tITEMS\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t----\t---------\t-----\t-------")
	for _, l := range lists {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			truncateID(l.ID),
			truncate(l.Name, 30),
			l.Kind,
			dateString(l.EffectiveDate),
			l.ItemCount,
			l.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// Snapshot writes the current list header and its history.
func Snapshot(out io.Writer, snap *model.Snapshot) {
	if snap == nil || snap.Latest == nil {
		_, _ = fmt.Fprintln(out, "No price lists loaded.")
		return
	}
	_, _ = fmt.Fprintln(out, "Current:")
	Lists(out, []model.ListSummary{snap.Latest.Summary()})
	if len(snap.Previous) == 0 {
		return
	}
	prev := make([]model.ListSummary, len(snap.Previous))
	for i := range snap.Previous {
		prev[i] = snap.Previous[i].Summary()
	}
	_, _ = fmt.Fprintln(out, "\nPrevious:")
	Lists(out, prev)
}

// Items writes the items of a list with their base prices.
func (f *Formatter) Items(out io.Writer, items []model.Item) {
	w := newTabWriter(out)
	_, _ = fmt.Fprintln(w, "CÓDIGO\tDESCRIPCIÓN\tCOLOR\tTALLE\tUNIDAD\tSUGERIDO\tORIGEN")
	_, _ = fmt.Fprintln(w, "------\t-----------\t-----\t-----\t------\t--------\t------")
	for _, it := range items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.Code,
			truncate(it.Description, 40),
			it.Color,
			it.Size,
			f.Money(it.UnitBasePrice),
			f.Money(it.SuggestedPrice),
			it.Origin,
		)
	}
	_ = w.Flush()
}

func listTitle(l model.ListSummary) string {
	if l.EffectiveDate != nil {
		return fmt.Sprintf("%s (%s)", l.Name, l.EffectiveDate)
	}
	return l.Name
}

func dateString(d *model.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
