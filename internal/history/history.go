// Package history maintains the ordered record of superseded price lists,
// most recent first.
package history

import (
	"github.com/sells-group/pricelist-cli/internal/model"
	"github.com/sells-group/pricelist-cli/internal/normalize"
)

const (
	// Unbounded disables truncation.
	Unbounded = 0
	// DefaultCap is the number of previous lists kept when none is configured.
	DefaultCap = 10
)

// PushCurrent returns a new history with outgoing normalized and placed in
// front. When limit is positive the result holds at most limit entries.
// A nil outgoing returns a copy of history. The input slice is never modified.
func PushCurrent(history []model.PriceList, outgoing *model.PriceList, limit int) []model.PriceList {
	out := make([]model.PriceList, 0, len(history)+1)
	if l := normalize.List(outgoing); l != nil {
		out = append(out, *l)
	}
	out = append(out, history...)
	return Truncate(out, limit)
}

// Truncate caps h to limit entries. A non-positive limit returns h unchanged.
func Truncate(h []model.PriceList, limit int) []model.PriceList {
	if limit > Unbounded && len(h) > limit {
		return h[:limit:limit]
	}
	return h
}
