package fetcher

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// MaxJSONSize bounds a price list document read by DecodeJSON.
const MaxJSONSize = 32 << 20

// DecodeJSON reads exactly one JSON value of type T from r. Numbers are kept
// as json.Number so codes like 000123 and prices survive untouched. Input
// longer than limit bytes or followed by more data is rejected.
func DecodeJSON[T any](r io.Reader, limit int64) (T, error) {
	var zero T
	lr := &io.LimitedReader{R: r, N: limit + 1}
	dec := json.NewDecoder(lr)
	dec.UseNumber()

	var v T
	if err := dec.Decode(&v); err != nil {
		if lr.N <= 0 {
			return zero, eris.Errorf("json: document exceeds %d bytes", limit)
		}
		return zero, eris.Wrap(err, "json: decode")
	}
	if dec.More() {
		return zero, eris.New("json: trailing data after document")
	}
	if lr.N <= 0 {
		return zero, eris.Errorf("json: document exceeds %d bytes", limit)
	}
	return v, nil
}
