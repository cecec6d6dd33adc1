// Package store persists price lists. Lists are ordered by creation time,
// most recent first; the most recent one is the current list.
package store

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/pricelist-cli/internal/model"
)

// ErrNotFound is returned when a list id does not exist.
var ErrNotFound = eris.New("store: price list not found")

// ListFilter specifies criteria for listing price list summaries.
type ListFilter struct {
	Name   string         `json:"name,omitempty"`
	Kind   model.ListKind `json:"kind,omitempty"`
	Limit  int            `json:"limit,omitempty"`
	Offset int            `json:"offset,omitempty"`
}

// DefaultListLimit applies when ListFilter.Limit is not positive.
const DefaultListLimit = 100

// Store defines the persistence interface for price lists.
type Store interface {
	// Save inserts the list, or replaces the list with the same id.
	Save(ctx context.Context, list *model.PriceList) error
	// Get returns one list with its items, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.PriceList, error)
	// Load returns the current list and up to previousLimit lists before it.
	// A non-positive previousLimit returns every previous list.
	Load(ctx context.Context, previousLimit int) (*model.Snapshot, error)
	// List returns list headers, most recent first.
	List(ctx context.Context, filter ListFilter) ([]model.ListSummary, error)
	// Delete removes a list and its items, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	Migrate(ctx context.Context) error
	Close() error
}

// snapshotOf splits lists ordered most recent first into a Snapshot.
func snapshotOf(lists []model.PriceList, previousLimit int) *model.Snapshot {
	snap := &model.Snapshot{Previous: []model.PriceList{}}
	if len(lists) == 0 {
		return snap
	}
	latest := lists[0]
	snap.Latest = &latest
	prev := lists[1:]
	if previousLimit > 0 && len(prev) > previousLimit {
		prev = prev[:previousLimit]
	}
	snap.Previous = append(snap.Previous, prev...)
	return snap
}

// filterSummaries applies filter to summaries already ordered most recent first.
func filterSummaries(all []model.ListSummary, filter ListFilter) []model.ListSummary {
	out := make([]model.ListSummary, 0, len(all))
	for _, s := range all {
		if filter.Name != "" && s.Name != filter.Name {
			continue
		}
		if filter.Kind != "" && s.Kind != filter.Kind {
			continue
		}
		out = append(out, s)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []model.ListSummary{}
		}
		out = out[filter.Offset:]
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// sortRecentFirst orders lists by CreatedAt descending, keeping the relative
// order of lists created at the same instant.
func sortRecentFirst(lists []model.PriceList) {
	sort.SliceStable(lists, func(i, j int) bool {
		return lists[i].CreatedAt.After(lists[j].CreatedAt)
	})
}

func validateForSave(list *model.PriceList) error {
	if list == nil {
		return eris.New("store: nil price list")
	}
	if list.ID == "" {
		return eris.New("store: price list has no id")
	}
	return nil
}
