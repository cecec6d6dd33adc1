// Package ingest reads supplier price list files (local or remote) into
// normalized price lists.
package ingest

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pricelist-cli/internal/fetcher"
	"github.com/sells-group/pricelist-cli/internal/model"
	"github.com/sells-group/pricelist-cli/internal/normalize"
	"github.com/sells-group/pricelist-cli/internal/store"
)

var (
	// ErrNoItems is returned when a file yields no item with a code.
	ErrNoItems = eris.New("ingest: file contains no valid items")
	// ErrUnsupportedFormat is returned for extensions Load cannot parse.
	ErrUnsupportedFormat = eris.New("ingest: unsupported file format")
)

// Options override the metadata read from the file.
type Options struct {
	Name          string
	Kind          model.ListKind
	Origin        string
	EffectiveDate *model.Date
	// Sheet selects the worksheet of .xlsx files. Zero value reads the first one.
	Sheet fetcher.XLSXOptions
}

// Loader reads price lists from paths and URLs.
type Loader struct {
	router fetcher.Router
}

// NewLoader returns a Loader that downloads remote sources through router.
func NewLoader(router fetcher.Router) *Loader {
	return &Loader{router: router}
}

// Load reads source, a local path or an http(s)/ftp URL, and returns the
// normalized list. The list has no id or creation time yet.
func (l *Loader) Load(ctx context.Context, source string, opts Options) (*model.PriceList, error) {
	log := zap.L().With(zap.String("source", source))

	localPath := source
	if fetcher.IsRemote(source) {
		tmpDir, err := os.MkdirTemp("", "pricelist-ingest-*")
		if err != nil {
			return nil, eris.Wrap(err, "ingest: create temp dir")
		}
		defer os.RemoveAll(tmpDir) //nolint:errcheck

		localPath, err = l.download(ctx, source, tmpDir)
		if err != nil {
			return nil, err
		}
	}

	raw, err := readFile(localPath, opts.Sheet)
	if err != nil {
		return nil, err
	}

	list := normalize.List(raw)
	applyOptions(list, remoteBase(source), opts)
	if len(list.Items) == 0 {
		return nil, eris.Wrapf(ErrNoItems, "ingest: %s", source)
	}

	log.Info("ingest: loaded price list",
		zap.String("name", list.Name),
		zap.Int("items", len(list.Items)),
	)
	return list, nil
}

func (l *Loader) download(ctx context.Context, source, dir string) (string, error) {
	f, err := l.router.For(source)
	if err != nil {
		return "", eris.Wrap(err, "ingest: route source")
	}
	dest := filepath.Join(dir, remoteBase(source))
	n, err := f.DownloadToFile(ctx, source, dest)
	if err != nil {
		return "", eris.Wrapf(err, "ingest: download %s", source)
	}
	zap.L().Debug("ingest: downloaded source", zap.String("source", source), zap.Int64("bytes", n))
	return dest, nil
}

// archiveExts are the entries a ZIP upload may carry. Nested archives are
// not among them.
var archiveExts = []string{".xlsx", ".csv", ".txt", ".json"}

// readFile dispatches on the file extension and returns a raw list record
// for normalize.List.
func readFile(p string, sheet fetcher.XLSXOptions) (any, error) {
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".xlsx":
		rows, err := fetcher.ReadXLSX(p, sheet)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: read %s", p)
		}
		return rowsRecord(rows), nil
	case ".csv", ".txt":
		rows, err := readCSV(p)
		if err != nil {
			return nil, err
		}
		return rowsRecord(rows), nil
	case ".json":
		f, err := os.Open(p)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: open %s", p)
		}
		defer f.Close() //nolint:errcheck
		obj, err := fetcher.DecodeJSON[map[string]any](f, fetcher.MaxJSONSize)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: decode %s", p)
		}
		return obj, nil
	case ".zip":
		dir, err := os.MkdirTemp("", "pricelist-zip-*")
		if err != nil {
			return nil, eris.Wrap(err, "ingest: create temp dir")
		}
		defer os.RemoveAll(dir) //nolint:errcheck
		inner, err := fetcher.ExtractPriceList(p, dir, archiveExts...)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: extract %s", p)
		}
		return readFile(inner, sheet)
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "ingest: %q", ext)
	}
}

func readCSV(p string) ([][]string, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", p)
	}
	defer f.Close() //nolint:errcheck

	rows, err := fetcher.ReadCSV(f, fetcher.CSVOptions{LazyQuotes: true, TrimSpace: true})
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: parse %s", p)
	}
	return rows, nil
}

// rowsRecord turns a header row plus data rows into {"items": [...]}, one
// record per data row keyed by header cell.
func rowsRecord(rows [][]string) map[string]any {
	items := []any{}
	if len(rows) == 0 {
		return map[string]any{"items": items}
	}
	header := rows[0]
	for _, row := range rows[1:] {
		rec := make(map[string]any, len(header))
		for i, h := range header {
			h = strings.TrimSpace(h)
			if h == "" || i >= len(row) {
				continue
			}
			rec[h] = row[i]
		}
		items = append(items, rec)
	}
	return map[string]any{"items": items}
}

// applyOptions fills list metadata from opts and the source file name
// without its extension.
func applyOptions(list *model.PriceList, base string, opts Options) {
	stem := strings.TrimSuffix(base, path.Ext(base))
	if list.SourceName == "" {
		list.SourceName = stem
	}
	switch {
	case opts.Name != "":
		list.Name = opts.Name
	case list.Name == "":
		list.Name = stem
	}
	if opts.Kind != "" {
		list.Kind = opts.Kind
	}
	if opts.Origin != "" {
		list.Origin = opts.Origin
	}
	if opts.EffectiveDate != nil {
		d := *opts.EffectiveDate
		list.EffectiveDate = &d
	}
}

// remoteBase returns the file name of a path or URL.
func remoteBase(source string) string {
	if fetcher.IsRemote(source) {
		if u, err := url.Parse(source); err == nil {
			if b := path.Base(u.Path); b != "" && b != "/" && b != "." {
				return b
			}
		}
		return "download"
	}
	return filepath.Base(source)
}

// LoadLegacyDump reads a whole lists document, as committed by the
// version-controlled store, for migration into another store.
func LoadLegacyDump(r io.Reader) ([]model.PriceList, error) {
	doc, err := fetcher.DecodeJSON[json.RawMessage](r, fetcher.MaxJSONSize)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read dump")
	}
	lists, err := store.DecodeDocument(doc)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: decode dump")
	}
	return lists, nil
}
