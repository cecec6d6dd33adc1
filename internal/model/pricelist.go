package model

import (
	"time"
)

// ListKind identifies the product line a price list belongs to.
type ListKind string

const (
	ListKindLinea  ListKind = "linea"
	ListKindMallas ListKind = "mallas"
)

// Valid reports whether k is a known kind. The empty kind is accepted.
func (k ListKind) Valid() bool {
	switch k {
	case "", ListKindLinea, ListKindMallas:
		return true
	default:
		return false
	}
}

// Item is one priced product line of a list.
type Item struct {
	Code           string  `json:"code" yaml:"code"`
	Description    string  `json:"description" yaml:"description"`
	Color          string  `json:"color,omitempty" yaml:"color,omitempty"`
	Size           string  `json:"size,omitempty" yaml:"size,omitempty"`
	UnitBasePrice  float64 `json:"unitBasePrice" yaml:"unit_base_price"`
	SuggestedPrice float64 `json:"suggestedPrice,omitempty" yaml:"suggested_price,omitempty"`
	Origin         string  `json:"origin,omitempty" yaml:"origin,omitempty"`
}

// PriceList is an immutable snapshot of priced items. Edits produce a new list.
type PriceList struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	SourceName    string    `json:"sourceName,omitempty" yaml:"source_name,omitempty"`
	Origin        string    `json:"origin,omitempty" yaml:"origin,omitempty"`
	Kind          ListKind  `json:"kind,omitempty" yaml:"kind,omitempty"`
	EffectiveDate *Date     `json:"effectiveDate" yaml:"effective_date"`
	CreatedAt     time.Time `json:"createdAt" yaml:"created_at"`
	Items         []Item    `json:"items" yaml:"items"`
}

// Summary returns the header-only view of the list.
func (l *PriceList) Summary() ListSummary {
	return ListSummary{
		ID:            l.ID,
		Name:          l.Name,
		SourceName:    l.SourceName,
		Origin:        l.Origin,
		Kind:          l.Kind,
		EffectiveDate: l.EffectiveDate,
		CreatedAt:     l.CreatedAt,
		ItemCount:     len(l.Items),
	}
}

// ListSummary is a price list header without its items.
type ListSummary struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	SourceName    string    `json:"sourceName,omitempty" yaml:"source_name,omitempty"`
	Origin        string    `json:"origin,omitempty" yaml:"origin,omitempty"`
	Kind          ListKind  `json:"kind,omitempty" yaml:"kind,omitempty"`
	EffectiveDate *Date     `json:"effectiveDate" yaml:"effective_date"`
	CreatedAt     time.Time `json:"createdAt" yaml:"created_at"`
	ItemCount     int       `json:"itemCount" yaml:"item_count"`
}

// Snapshot is what the persistence boundary hands back on load: the current
// list and the lists it superseded, most recent first.
type Snapshot struct {
	Latest   *PriceList  `json:"latest"`
	Previous []PriceList `json:"previous"`
}
