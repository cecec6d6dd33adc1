// Package report renders price lists, quotes, wholesale sheets and
// comparisons as terminal tables, JSON, YAML and xlsx workbooks.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates s. The empty string selects FormatTable.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", eris.Errorf("report: unknown format %q (want table, json or yaml)", s)
	}
}

// Formatter renders money amounts for one locale and currency.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter returns a Formatter for a BCP 47 locale such as "es-AR" and an
// ISO 4217 currency code such as "ARS".
func NewFormatter(locale, currencyCode string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, eris.Wrapf(err, "report: parse locale %q", locale)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, eris.Wrapf(err, "report: parse currency %q", currencyCode)
	}
	return &Formatter{printer: message.NewPrinter(tag), unit: unit}, nil
}

// DefaultFormatter formats Argentine pesos.
func DefaultFormatter() *Formatter {
	return &Formatter{
		printer: message.NewPrinter(language.MustParse("es-AR")),
		unit:    currency.ARS,
	}
}

// Money formats v with the currency symbol and two decimals.
func (f *Formatter) Money(v float64) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(Round2(v))))
}

// Percent formats a percentage with two decimals, e.g. "12.34%".
func Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "report: encode json")
}

// WriteYAML writes v as YAML.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "report: encode yaml")
	}
	return eris.Wrap(enc.Close(), "report: close yaml encoder")
}

// Encode writes v in a structured format. FormatTable is rejected; tables
// are rendered by the type-specific Formatter methods.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, v)
	case FormatYAML:
		return WriteYAML(w, v)
	default:
		return eris.Errorf("report: cannot encode %q", format)
	}
}
