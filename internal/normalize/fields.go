package normalize

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/pricelist-cli/internal/model"
)

// fields is a record whose keys have been folded with foldKey.
type fields map[string]any

// foldKey lower-cases k, strips diacritics and drops separators so that
// "Artículo", "ARTICULO" and "articulo" resolve to the same key.
func foldKey(k string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, k)
	if err != nil {
		s = k
	}
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '_', '-', '.', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// foldFields builds a folded record. Raw keys are visited in sorted order and
// the first non-empty value for a folded key is kept.
func foldFields(raw map[string]any) fields {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f := make(fields, len(raw))
	for _, k := range keys {
		fk := foldKey(k)
		if prev, ok := f[fk]; ok && !isEmpty(prev) {
			continue
		}
		f[fk] = raw[k]
	}
	return f
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case time.Time:
		return x.IsZero()
	case *time.Time:
		return x == nil || x.IsZero()
	case model.Date:
		return x.IsZero()
	case *model.Date:
		return x == nil || x.IsZero()
	default:
		return false
	}
}

// extractor reads one canonical value out of a folded record.
type extractor[T any] func(f fields) (T, bool)

// chain tries each extractor in priority order; the first hit wins.
func chain[T any](exs ...extractor[T]) extractor[T] {
	return func(f fields) (T, bool) {
		for _, ex := range exs {
			if v, ok := ex(f); ok {
				return v, true
			}
		}
		var zero T
		return zero, false
	}
}

// stringField yields the trimmed string value of key when it is non-empty.
func stringField(key string) extractor[string] {
	return func(f fields) (string, bool) {
		s := toString(f[key])
		return s, s != ""
	}
}

// numberField yields the value of key when it parses as a number. An explicit
// zero is a value, so it stops the chain.
func numberField(key string) extractor[float64] {
	return func(f fields) (float64, bool) {
		return toNumber(f[key])
	}
}

// arrayField yields the value of key when it is a non-empty array.
func arrayField(key string) extractor[[]any] {
	return func(f fields) ([]any, bool) {
		arr := toArray(f[key])
		return arr, len(arr) > 0
	}
}

// presentField yields the raw value of key when it is non-empty.
func presentField(key string) extractor[any] {
	return func(f fields) (any, bool) {
		v := f[key]
		return v, !isEmpty(v)
	}
}

func texts(keys ...string) extractor[string] {
	exs := make([]extractor[string], len(keys))
	for i, k := range keys {
		exs[i] = stringField(k)
	}
	return chain(exs...)
}

func numbers(keys ...string) extractor[float64] {
	exs := make([]extractor[float64], len(keys))
	for i, k := range keys {
		exs[i] = numberField(k)
	}
	return chain(exs...)
}

func arrays(keys ...string) extractor[[]any] {
	exs := make([]extractor[[]any], len(keys))
	for i, k := range keys {
		exs[i] = arrayField(k)
	}
	return chain(exs...)
}

func present(keys ...string) extractor[any] {
	exs := make([]extractor[any], len(keys))
	for i, k := range keys {
		exs[i] = presentField(k)
	}
	return chain(exs...)
}

// dates takes the first non-empty candidate and then parses it. A present but
// unparseable value yields no date; later candidates are not consulted.
func dates(keys ...string) extractor[model.Date] {
	first := present(keys...)
	return func(f fields) (model.Date, bool) {
		v, ok := first(f)
		if !ok {
			return model.Date{}, false
		}
		return toDate(v)
	}
}

// times resolves a timestamp the same way dates does.
func times(keys ...string) extractor[time.Time] {
	first := present(keys...)
	return func(f fields) (time.Time, bool) {
		v, ok := first(f)
		if !ok {
			return time.Time{}, false
		}
		return toTime(v)
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case model.ListKind:
		return strings.TrimSpace(string(x))
	default:
		return ""
	}
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		n, err := x.Float64()
		return n, err == nil
	case string:
		return ParseNumber(x)
	default:
		return 0, false
	}
}

// ParseNumber reads a price typed by a person or exported by a spreadsheet.
// It accepts currency symbols and both "1.234,56" and "1,234.56" grouping.
// A lone comma is read as the decimal separator.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("$", "", "ARS", "", " ", "", "\u00a0", "").Replace(s)
	if s == "" {
		return 0, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func toArray(v any) []any {
	switch x := v.(type) {
	case []any:
		return x
	case []map[string]any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out
	case []model.Item:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out
	default:
		return nil
	}
}

var dateLayouts = []string{
	model.DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
}

func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case model.Date:
		return x.Time, !x.IsZero()
	case *model.Date:
		if x == nil {
			return time.Time{}, false
		}
		return x.Time, !x.IsZero()
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, !t.IsZero()
			}
		}
	}
	return time.Time{}, false
}

func toDate(v any) (model.Date, bool) {
	t, ok := toTime(v)
	if !ok {
		return model.Date{}, false
	}
	return model.NewDate(t), true
}

// sanitizePrice keeps prices finite and non-negative.
func sanitizePrice(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	return p
}
