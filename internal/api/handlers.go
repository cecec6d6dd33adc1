package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/pricelist-cli/internal/compare"
	"github.com/sells-group/pricelist-cli/internal/model"
)

type createListRequest struct {
	Name          string        `json:"name" validate:"required,max=200"`
	EffectiveDate string        `json:"effectiveDate" validate:"required,datetime=2006-01-02"`
	Origin        string        `json:"origin" validate:"max=100"`
	Kind          string        `json:"kind" validate:"omitempty,oneof=linea mallas"`
	Items         []itemRequest `json:"items" validate:"required,min=1,dive"`
}

type itemRequest struct {
	Code           string  `json:"code" validate:"required,max=100"`
	Description    string  `json:"description" validate:"max=500"`
	Color          string  `json:"color"`
	Size           string  `json:"size"`
	UnitBasePrice  float64 `json:"unitBasePrice" validate:"gte=0"`
	SuggestedPrice float64 `json:"suggestedPrice" validate:"gte=0"`
	Origin         string  `json:"origin"`
}

func (req createListRequest) priceList() (*model.PriceList, error) {
	d, err := model.ParseDate(req.EffectiveDate)
	if err != nil {
		return nil, badRequest("validation failed", map[string]string{"effectiveDate": err.Error()})
	}
	l := &model.PriceList{
		Name:          req.Name,
		Origin:        req.Origin,
		Kind:          model.ListKind(req.Kind),
		EffectiveDate: &d,
		Items:         make([]model.Item, len(req.Items)),
	}
	for i, it := range req.Items {
		l.Items[i] = model.Item{
			Code:           it.Code,
			Description:    it.Description,
			Color:          it.Color,
			Size:           it.Size,
			UnitBasePrice:  it.UnitBasePrice,
			SuggestedPrice: it.SuggestedPrice,
			Origin:         it.Origin,
		}
	}
	return l, nil
}

func (s *server) getLists(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) getList(w http.ResponseWriter, r *http.Request) {
	l, err := s.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *server) createList(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if err := decodeJSONBody(r, &req); err != nil {
		s.metrics.IncImport(false, 0)
		writeError(w, r, err)
		return
	}
	list, err := req.priceList()
	if err != nil {
		s.metrics.IncImport(false, 0)
		writeError(w, r, err)
		return
	}
	res, err := s.svc.Import(r.Context(), list)
	if err != nil {
		s.metrics.IncImport(false, 0)
		writeError(w, r, err)
		return
	}
	s.metrics.IncImport(true, len(res.Current.Items))
	writeJSON(w, http.StatusCreated, res)
}

func (s *server) deleteList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deletedId": id})
}

func (s *server) getQuote(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.discountsFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := s.svc.Quote(r.Context(), chi.URLParam(r, "code"), cfg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) getWholesale(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.discountsFor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := s.svc.Wholesale(r.Context(), r.URL.Query().Get("q"), cfg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"discounts": cfg,
		"rows":      rows,
	})
}

func (s *server) getComparison(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.svc.Compare(r.Context(),
		q.Get("prior"),
		compare.ParseSortKey(q.Get("sort")),
		compare.ParseDirection(q.Get("dir")),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// discountsFor overlays the tax, d1, d2 and d3 query parameters on the
// configured discounts.
func (s *server) discountsFor(r *http.Request) (model.DiscountConfig, error) {
	cfg := s.discounts
	q := r.URL.Query()
	details := map[string]string{}
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"tax", &cfg.TaxPercent},
		{"d1", &cfg.WholesaleDiscount1Percent},
		{"d2", &cfg.WholesaleDiscount2Percent},
		{"d3", &cfg.WholesaleDiscount3Percent},
	} {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			details[p.name] = "must be a number"
			continue
		}
		if !model.IsFinite(v) {
			details[p.name] = "must be a finite number"
			continue
		}
		*p.dst = v
	}
	if len(details) > 0 {
		return cfg, badRequest("invalid discount parameters", details)
	}
	return cfg, nil
}
