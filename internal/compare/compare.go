// Package compare joins two price-list snapshots by item code and reports the
// per-item price changes and their aggregate statistics.
package compare

import (
	"sort"
	"strings"

	"github.com/sells-group/pricelist-cli/internal/model"
	"github.com/sells-group/pricelist-cli/internal/pricing"
)

// SortKey selects the column rows are ordered by.
type SortKey string

const (
	SortByCode  SortKey = "code"
	SortByDelta SortKey = "delta"
)

// Direction orders rows ascending or descending.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseSortKey maps user input to a SortKey, defaulting to SortByCode.
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delta", "incremento", "increase":
		return SortByDelta
	default:
		return SortByCode
	}
}

// ParseDirection maps user input to a Direction, defaulting to Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Result holds the comparison rows and their statistics.
// Stats is nil when no item code is present in both lists.
type Result struct {
	Rows  []model.ComparisonRow `json:"rows" yaml:"rows"`
	Stats *model.Stats          `json:"stats" yaml:"stats"`
}

// Lists compares current against prior. Only codes present in both lists
// produce a row; codes new in current are left out.
func Lists(current, prior *model.PriceList, key SortKey, dir Direction) Result {
	if current == nil || prior == nil {
		return Result{Rows: []model.ComparisonRow{}}
	}

	// First occurrence of a code in prior wins.
	priorByCode := make(map[string]model.Item, len(prior.Items))
	for _, it := range prior.Items {
		if _, seen := priorByCode[it.Code]; !seen {
			priorByCode[it.Code] = it
		}
	}

	rows := make([]model.ComparisonRow, 0, len(current.Items))
	for _, cur := range current.Items {
		prev, ok := priorByCode[cur.Code]
		if !ok {
			continue
		}
		rows = append(rows, Row(cur, prev))
	}

	Sort(rows, key, dir)

	return Result{Rows: rows, Stats: Summarize(rows)}
}

// Row computes the change between the current and prior version of an item.
func Row(current, prior model.Item) model.ComparisonRow {
	delta := current.UnitBasePrice - prior.UnitBasePrice
	var pct float64
	if prior.UnitBasePrice > 0 {
		pct = pricing.Percent(delta, prior.UnitBasePrice)
	}
	return model.ComparisonRow{
		Code:         current.Code,
		Description:  current.Description,
		CurrentPrice: current.UnitBasePrice,
		PriorPrice:   prior.UnitBasePrice,
		Delta:        delta,
		DeltaPercent: pct,
	}
}

// Sort orders rows in place. Desc reverses the comparator; ties keep their
// relative order.
func Sort(rows []model.ComparisonRow, key SortKey, dir Direction) {
	cmp := func(a, b model.ComparisonRow) int {
		if key == SortByDelta {
			switch {
			case a.Delta < b.Delta:
				return -1
			case a.Delta > b.Delta:
				return 1
			default:
				return 0
			}
		}
		return strings.Compare(a.Code, b.Code)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := cmp(rows[i], rows[j])
		if dir == Desc {
			c = -c
		}
		return c < 0
	})
}

// Summarize aggregates rows. It returns nil for an empty set.
func Summarize(rows []model.ComparisonRow) *model.Stats {
	if len(rows) == 0 {
		return nil
	}

	s := &model.Stats{
		Total:           len(rows),
		MaxDeltaPercent: rows[0].DeltaPercent,
		MinDeltaPercent: rows[0].DeltaPercent,
	}
	var sum float64
	for _, r := range rows {
		switch {
		case r.Delta > 0:
			s.CountIncreased++
		case r.Delta < 0:
			s.CountDecreased++
		default:
			s.CountUnchanged++
		}
		sum += r.DeltaPercent
		if r.DeltaPercent > s.MaxDeltaPercent {
			s.MaxDeltaPercent = r.DeltaPercent
		}
		if r.DeltaPercent < s.MinDeltaPercent {
			s.MinDeltaPercent = r.DeltaPercent
		}
	}
	s.AvgDeltaPercent = sum / float64(len(rows))
	return s
}
