// Package normalize turns price lists of any known shape (current records,
// legacy dumps, spreadsheet rows) into the canonical model.PriceList.
package normalize

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/pricelist-cli/internal/model"
)

// ErrInvalidInput is returned by Strict when the input cannot be read as an object.
var ErrInvalidInput = eris.New("normalize: input is not a price list object")

// List-level candidate keys, already folded.
var (
	listID         = texts("id", "key")
	listName       = texts("name", "nombre", "nombrelista")
	listSourceName = texts("sourcename", "nombrelista", "filename")
	listOrigin     = texts("origin", "origen")
	listKind       = texts("kind", "tipo")
	listItems      = arrays("articulos", "items", "itemslinea")
	listDate       = dates("effectivedate", "fecha", "vigentedesde", "createdat", "creadoen")
	listCreatedAt  = times("createdat", "creadoen")
)

// Item-level candidate keys, already folded.
var (
	itemCode        = texts("code", "codigo", "articulo", "sku")
	itemDescription = texts("description", "descripcion")
	itemColor       = texts("color")
	itemSize        = texts("size", "talle", "alto", "height")
	itemPrice       = numbers("unitbaseprice", "unidad", "unitario", "precio", "price")
	itemSuggested   = numbers("suggestedprice", "sugerido")
	itemOrigin      = texts("origin", "origen")
)

// List normalizes raw into a canonical price list. A nil input yields nil.
// Input that is not an object yields an empty list. The result always has a
// non-nil Items slice, and List(List(x)) equals List(x).
func List(raw any) *model.PriceList {
	if raw == nil {
		return nil
	}
	l, err := Strict(raw)
	if err != nil {
		return &model.PriceList{Items: []model.Item{}}
	}
	return l
}

// Strict is List that reports ErrInvalidInput instead of returning an empty list.
func Strict(raw any) (*model.PriceList, error) {
	switch x := raw.(type) {
	case nil:
		return nil, nil
	case *model.PriceList:
		if x == nil {
			return nil, nil
		}
		return fromStruct(x), nil
	case model.PriceList:
		return fromStruct(&x), nil
	case map[string]any:
		return fromFields(foldFields(x)), nil
	case fields:
		return fromFields(x), nil
	case json.RawMessage:
		return fromJSON(x)
	case []byte:
		return fromJSON(x)
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, eris.Wrap(ErrInvalidInput, err.Error())
	}
	return fromJSON(b)
}

// Lists normalizes a batch and drops entries that normalize to nil.
func Lists(raws []any) []model.PriceList {
	out := make([]model.PriceList, 0, len(raws))
	for _, raw := range raws {
		if l := List(raw); l != nil {
			out = append(out, *l)
		}
	}
	return out
}

func fromJSON(b []byte) (*model.PriceList, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, eris.Wrap(ErrInvalidInput, err.Error())
	}
	switch x := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return fromFields(foldFields(x)), nil
	default:
		return nil, ErrInvalidInput
	}
}

func fromFields(f fields) *model.PriceList {
	l := &model.PriceList{}
	l.ID, _ = listID(f)
	l.Name, _ = listName(f)
	l.SourceName, _ = listSourceName(f)
	l.Origin, _ = listOrigin(f)
	kind, _ := listKind(f)
	l.Kind = canonicalKind(kind)
	if d, ok := listDate(f); ok {
		l.EffectiveDate = &d
	}
	l.CreatedAt, _ = listCreatedAt(f)

	raw, _ := listItems(f)
	l.Items = make([]model.Item, 0, len(raw))
	for _, r := range raw {
		if it, ok := item(r); ok {
			l.Items = append(l.Items, it)
		}
	}
	return l
}

func fromStruct(in *model.PriceList) *model.PriceList {
	l := &model.PriceList{
		ID:         strings.TrimSpace(in.ID),
		Name:       strings.TrimSpace(in.Name),
		SourceName: strings.TrimSpace(in.SourceName),
		Origin:     strings.TrimSpace(in.Origin),
		Kind:       canonicalKind(string(in.Kind)),
		CreatedAt:  in.CreatedAt,
	}
	// A typed list is already resolved: a nil EffectiveDate stays nil.
	if in.EffectiveDate != nil && !in.EffectiveDate.IsZero() {
		d := model.NewDate(in.EffectiveDate.Time)
		l.EffectiveDate = &d
	}

	l.Items = make([]model.Item, 0, len(in.Items))
	for _, it := range in.Items {
		if it, ok := cleanItem(it); ok {
			l.Items = append(l.Items, it)
		}
	}
	return l
}

// item reads one raw item record. Records without a code are rejected.
func item(raw any) (model.Item, bool) {
	switch x := raw.(type) {
	case model.Item:
		return cleanItem(x)
	case *model.Item:
		if x == nil {
			return model.Item{}, false
		}
		return cleanItem(*x)
	case map[string]any:
		return itemFromFields(foldFields(x))
	case nil:
		return model.Item{}, false
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return model.Item{}, false
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return model.Item{}, false
	}
	return itemFromFields(foldFields(m))
}

func itemFromFields(f fields) (model.Item, bool) {
	code, ok := itemCode(f)
	if !ok {
		return model.Item{}, false
	}
	it := model.Item{Code: code}
	it.Description, _ = itemDescription(f)
	it.Color, _ = itemColor(f)
	it.Size, _ = itemSize(f)
	price, _ := itemPrice(f)
	it.UnitBasePrice = sanitizePrice(price)
	suggested, _ := itemSuggested(f)
	it.SuggestedPrice = sanitizePrice(suggested)
	it.Origin, _ = itemOrigin(f)
	return it, true
}

func cleanItem(it model.Item) (model.Item, bool) {
	it.Code = strings.TrimSpace(it.Code)
	if it.Code == "" {
		return model.Item{}, false
	}
	it.Description = strings.TrimSpace(it.Description)
	it.Color = strings.TrimSpace(it.Color)
	it.Size = strings.TrimSpace(it.Size)
	it.Origin = strings.TrimSpace(it.Origin)
	it.UnitBasePrice = sanitizePrice(it.UnitBasePrice)
	it.SuggestedPrice = sanitizePrice(it.SuggestedPrice)
	return it, true
}

// canonicalKind lower-cases s and drops unknown kinds.
func canonicalKind(s string) model.ListKind {
	k := model.ListKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return ""
	}
	return k
}
