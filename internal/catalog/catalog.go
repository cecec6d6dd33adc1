// Package catalog owns the current-list workflow: importing a new list makes
// it current and pushes the outgoing one onto the capped history.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pricelist-cli/internal/compare"
	"github.com/sells-group/pricelist-cli/internal/history"
	"github.com/sells-group/pricelist-cli/internal/model"
	"github.com/sells-group/pricelist-cli/internal/normalize"
	"github.com/sells-group/pricelist-cli/internal/pricing"
	"github.com/sells-group/pricelist-cli/internal/store"
)

var (
	// ErrNoCurrentList is returned when nothing has been imported yet.
	ErrNoCurrentList = eris.New("catalog: no current price list")
	// ErrNoPriorList is returned by Compare when the current list has no predecessor.
	ErrNoPriorList = eris.New("catalog: no previous price list to compare against")
	// ErrItemNotFound is returned by Quote for an unknown item code.
	ErrItemNotFound = eris.New("catalog: item not found")
)

// Service coordinates a store with the pricing, comparison and history rules.
type Service struct {
	store      store.Store
	historyCap int
	now        func() time.Time
	newID      func() string
}

// Option configures a Service.
type Option func(*Service)

// WithHistoryCap sets how many previous lists are kept visible.
// history.Unbounded disables the cap.
func WithHistoryCap(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.historyCap = n
		}
	}
}

// WithClock overrides the creation-time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator overrides the list id source.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// New returns a Service over st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:      st,
		historyCap: history.DefaultCap,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// HistoryCap returns the number of previous lists the service keeps visible.
func (s *Service) HistoryCap() int { return s.historyCap }

// ImportResult is the state after an import.
type ImportResult struct {
	Current  *model.PriceList  `json:"current"`
	Previous []model.PriceList `json:"previous"`
	// Replaced is true when the import overwrote a list with the same id.
	Replaced bool `json:"replaced"`
}

// Import normalizes raw, makes it the current list and persists it. The
// list gets a fresh id and creation time unless it already carries them.
func (s *Service) Import(ctx context.Context, raw any) (*ImportResult, error) {
	list, err := normalize.Strict(raw)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: import")
	}
	if list == nil {
		return nil, eris.Wrap(normalize.ErrInvalidInput, "catalog: import nil list")
	}

	snap, err := s.store.Load(ctx, s.historyCap)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: load current state")
	}

	if list.ID == "" {
		list.ID = s.newID()
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = s.now().UTC()
	}
	if list.EffectiveDate == nil {
		d := model.NewDate(list.CreatedAt)
		list.EffectiveDate = &d
	}

	if err := s.store.Save(ctx, list); err != nil {
		return nil, eris.Wrapf(err, "catalog: save list %s", list.ID)
	}

	res := &ImportResult{Current: list}
	switch {
	case snap.Latest == nil:
		res.Previous = history.PushCurrent(snap.Previous, nil, s.historyCap)
	case snap.Latest.ID == list.ID:
		res.Replaced = true
		res.Previous = history.PushCurrent(snap.Previous, nil, s.historyCap)
	default:
		res.Previous = history.PushCurrent(snap.Previous, snap.Latest, s.historyCap)
	}

	zap.L().Info("catalog: imported price list",
		zap.String("id", list.ID),
		zap.String("name", list.Name),
		zap.Int("items", len(list.Items)),
		zap.Int("previous", len(res.Previous)),
		zap.Bool("replaced", res.Replaced),
	)
	return res, nil
}

// Snapshot returns the current list and up to HistoryCap previous lists.
func (s *Service) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	snap, err := s.store.Load(ctx, s.historyCap)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: load snapshot")
	}
	return snap, nil
}

// Current returns the most recent list, or ErrNoCurrentList.
func (s *Service) Current(ctx context.Context) (*model.PriceList, error) {
	snap, err := s.store.Load(ctx, 1)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: load current list")
	}
	if snap.Latest == nil {
		return nil, ErrNoCurrentList
	}
	return snap.Latest, nil
}

// Quote derives every price for the current item with the given code.
func (s *Service) Quote(ctx context.Context, code string, cfg model.DiscountConfig) (*model.Quote, error) {
	cur, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	it, ok := pricing.Lookup(cur, code)
	if !ok {
		return nil, eris.Wrapf(ErrItemNotFound, "catalog: code %q", code)
	}
	return &model.Quote{Item: *it, Prices: pricing.Compute(it.UnitBasePrice, cfg)}, nil
}

// Search returns the current items whose code or description contains query.
func (s *Service) Search(ctx context.Context, query string) ([]model.Item, error) {
	cur, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return pricing.Search(cur, query), nil
}

// Wholesale builds the wholesale sheet of the current list, filtered by query.
func (s *Service) Wholesale(ctx context.Context, query string, cfg model.DiscountConfig) ([]model.WholesaleRow, error) {
	cur, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return pricing.WholesaleSheet(cur, query, cfg), nil
}

// Comparison is the result of comparing the current list against a prior one.
type Comparison struct {
	Current        model.ListSummary `json:"current" yaml:"current"`
	Prior          model.ListSummary `json:"prior" yaml:"prior"`
	compare.Result `yaml:",inline"`
}

// Compare compares the current list against priorID, or against the most
// recent previous list when priorID is empty.
func (s *Service) Compare(ctx context.Context, priorID string, key compare.SortKey, dir compare.Direction) (*Comparison, error) {
	snap, err := s.store.Load(ctx, 1)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: load lists")
	}
	if snap.Latest == nil {
		return nil, ErrNoCurrentList
	}

	var prior *model.PriceList
	if priorID == "" {
		if len(snap.Previous) == 0 {
			return nil, ErrNoPriorList
		}
		prior = &snap.Previous[0]
	} else {
		prior, err = s.store.Get(ctx, priorID)
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: load prior list %s", priorID)
		}
	}

	return &Comparison{
		Current: snap.Latest.Summary(),
		Prior:   prior.Summary(),
		Result:  compare.Lists(snap.Latest, prior, key, dir),
	}, nil
}

// Get returns a stored list by id.
func (s *Service) Get(ctx context.Context, id string) (*model.PriceList, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: get list %s", id)
	}
	return l, nil
}

// Delete removes a stored list. Deleting the current list makes the most
// recent previous list current.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return eris.Wrapf(err, "catalog: delete list %s", id)
	}
	zap.L().Info("catalog: deleted price list", zap.String("id", id))
	return nil
}

// List returns stored list headers, most recent first.
func (s *Service) List(ctx context.Context, filter store.ListFilter) ([]model.ListSummary, error) {
	out, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: list summaries")
	}
	return out, nil
}

// Restore saves lists exactly as given, keeping their ids and creation times.
// Used to migrate a legacy dump into another store.
func (s *Service) Restore(ctx context.Context, lists []model.PriceList) (int, error) {
	for i := range lists {
		l := normalize.List(&lists[i])
		if l.ID == "" {
			l.ID = s.newID()
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = createdAtFor(l, s.now)
		}
		if err := s.store.Save(ctx, l); err != nil {
			return i, eris.Wrapf(err, "catalog: restore list %s", l.ID)
		}
	}
	return len(lists), nil
}

// createdAtFor falls back to the effective date so restored history keeps
// its order.
func createdAtFor(l *model.PriceList, now func() time.Time) time.Time {
	if l.EffectiveDate != nil {
		return l.EffectiveDate.Time.UTC()
	}
	return now().UTC()
}
