// Package fetcher downloads price list files over HTTP and FTP and parses the
// CSV, JSON, XLSX and ZIP formats suppliers send them in.
package fetcher

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

const utf8BOM = "\ufeff"

// CSVOptions configures ReadCSV.
type CSVOptions struct {
	Delimiter  rune // 0 detects it from the first line
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// ReadCSV reads every non-blank row of a delimited export. A leading UTF-8
// byte order mark is dropped and rows may have differing lengths.
func ReadCSV(r io.Reader, opts CSVOptions) ([][]string, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && string(b) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	delim := opts.Delimiter
	if delim == 0 {
		head, err := br.Peek(4096)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, eris.Wrap(err, "csv: peek first line")
		}
		line, _, _ := strings.Cut(string(head), "\n")
		delim = DetectDelimiter(line)
	}

	reader := csv.NewReader(br)
	reader.Comma = delim
	reader.Comment = opts.Comment
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: read row %d", len(rows)+1)
		}
		if opts.TrimSpace {
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
		}
		if blank(record) {
			continue
		}
		rows = append(rows, record)
	}
}

// DetectDelimiter guesses the field separator from the first line of a CSV
// export. Spanish-locale spreadsheets export with ';'.
func DetectDelimiter(firstLine string) rune {
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(firstLine, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
