package ingest

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pricelist-cli/internal/fetcher"
	"github.com/sells-group/pricelist-cli/internal/model"
)

func writeXLSX(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	require.NoError(t, fetcher.WriteXLSX(f, fetcher.Sheet{
		Name:   "Hoja1",
		Header: []string{"Artículo", "Descripción", "Color", "Talle", "Unidad", "Sugerido", "Origen"},
		Rows: [][]any{
			{"A001", "Remera", "Azul", "M", 1500.0, 3000.0, "AR"},
			{"", "fila sin código", "", "", 10.0, 0.0, ""},
			{"A002", "Buzo", "Gris", "L", 2500, 5000, "BR"},
		},
	}))
}

func newLoader() *Loader {
	return NewLoader(fetcher.Router{HTTP: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{MaxRetries: 1})})
}

func TestLoad_XLSX(t *testing.T) {
	p := filepath.Join(t.TempDir(), "Lista Marzo.xlsx")
	writeXLSX(t, p)

	l, err := newLoader().Load(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Lista Marzo", l.Name)
	assert.Equal(t, "Lista Marzo", l.SourceName)
	assert.Empty(t, l.ID)
	require.Len(t, l.Items, 2)

	first := l.Items[0]
	assert.Equal(t, "A001", first.Code)
	assert.Equal(t, "Remera", first.Description)
	assert.Equal(t, "Azul", first.Color)
	assert.Equal(t, "M", first.Size)
	assert.InDelta(t, 1500.0, first.UnitBasePrice, 1e-9)
	assert.InDelta(t, 3000.0, first.SuggestedPrice, 1e-9)
	assert.Equal(t, "AR", first.Origin)
	assert.InDelta(t, 2500.0, l.Items[1].UnitBasePrice, 1e-9)
}

func TestLoad_OptionsOverride(t *testing.T) {
	p := filepath.Join(t.TempDir(), "mallas.xlsx")
	writeXLSX(t, p)
	d, err := model.ParseDate("2024-04-01")
	require.NoError(t, err)

	l, err := newLoader().Load(context.Background(), p, Options{
		Name:          "Mallas Abril",
		Kind:          model.ListKindMallas,
		Origin:        "fabrica",
		EffectiveDate: &d,
	})
	require.NoError(t, err)
	assert.Equal(t, "Mallas Abril", l.Name)
	assert.Equal(t, "mallas", l.SourceName)
	assert.Equal(t, model.ListKindMallas, l.Kind)
	assert.Equal(t, "fabrica", l.Origin)
	require.NotNil(t, l.EffectiveDate)
	assert.Equal(t, "2024-04-01", l.EffectiveDate.String())
}

func TestLoad_CSVSemicolon(t *testing.T) {
	p := filepath.Join(t.TempDir(), "lista.csv")
	content := "\ufeffARTICULO;DESCRIPCION;UNIDAD\nB1;Short;\"1.234,50\"\n;;\nB2;Malla;99\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	l, err := newLoader().Load(context.Background(), p, Options{})
	require.NoError(t, err)
	require.Len(t, l.Items, 2)
	assert.Equal(t, "B1", l.Items[0].Code)
	assert.InDelta(t, 1234.5, l.Items[0].UnitBasePrice, 1e-9)
	assert.Equal(t, "Malla", l.Items[1].Description)
}

func TestLoad_JSON(t *testing.T) {
	p := filepath.Join(t.TempDir(), "dump.json")
	body := `{"nombre": "Julio", "fecha": "2024-07-01", "articulos": [{"codigo": "J1", "precio": 10}]}`
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	l, err := newLoader().Load(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Julio", l.Name)
	assert.Equal(t, "2024-07-01", l.EffectiveDate.String())
	require.Len(t, l.Items, 1)
}

func TestLoad_JSONNumericCodesKeepDigits(t *testing.T) {
	p := filepath.Join(t.TempDir(), "codigos.json")
	body := `{"nombre": "Num", "items": [{"codigo": 120034, "precio": 1250.50}]}`
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	l, err := newLoader().Load(context.Background(), p, Options{})
	require.NoError(t, err)
	require.Len(t, l.Items, 1)
	assert.Equal(t, "120034", l.Items[0].Code)
	assert.InDelta(t, 1250.5, l.Items[0].UnitBasePrice, 1e-9)
}

func TestLoad_ZIP(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "envio.zip")
	zf, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(zf)
	w, err := zw.Create("lista.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte("code,price\nZ1,5\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	l, err := newLoader().Load(context.Background(), zipPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, "envio", l.Name)
	assert.Equal(t, "envio", l.SourceName)
	require.Len(t, l.Items, 1)
	assert.Equal(t, "Z1", l.Items[0].Code)
}

func TestLoad_NestedZIPRejected(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "doble.zip")
	zf, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(zf)
	w, err := zw.Create("interno.zip")
	require.NoError(t, err)
	_, err = w.Write([]byte("PK"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	_, err = newLoader().Load(context.Background(), zipPath, Options{})
	require.Error(t, err)
	assert.True(t, eris.Is(err, fetcher.ErrNoArchiveEntry))
}

func TestLoad_NoItems(t *testing.T) {
	p := filepath.Join(t.TempDir(), "vacia.csv")
	require.NoError(t, os.WriteFile(p, []byte("descripcion,precio\nsin codigo,10\n"), 0o644))

	_, err := newLoader().Load(context.Background(), p, Options{})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoItems))
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	p := filepath.Join(t.TempDir(), "lista.pdf")
	require.NoError(t, os.WriteFile(p, []byte("%PDF"), 0o644))

	_, err := newLoader().Load(context.Background(), p, Options{})
	assert.True(t, eris.Is(err, ErrUnsupportedFormat))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := newLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"), Options{})
	assert.Error(t, err)
}

func TestLoad_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/listas/abril.csv", r.URL.Path)
		_, _ = w.Write([]byte("codigo,precio\nR1,100\nR2,200\n"))
	}))
	defer srv.Close()

	l, err := newLoader().Load(context.Background(), srv.URL+"/listas/abril.csv", Options{})
	require.NoError(t, err)
	assert.Equal(t, "abril", l.Name)
	assert.Equal(t, "abril", l.SourceName)
	assert.Len(t, l.Items, 2)
}

func TestLoad_RemoteWithoutFetcher(t *testing.T) {
	_, err := NewLoader(fetcher.Router{}).Load(context.Background(), "ftp://example.com/lista.csv", Options{})
	assert.Error(t, err)
}

func TestRowsRecord(t *testing.T) {
	rec := rowsRecord([][]string{{"code", " ", "price"}, {"A", "ignored", "1"}, {"B"}})
	items := rec["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, map[string]any{"code": "A", "price": "1"}, items[0])
	assert.Equal(t, map[string]any{"code": "B"}, items[1])

	assert.Empty(t, rowsRecord(nil)["items"])
}

func TestRemoteBase(t *testing.T) {
	assert.Equal(t, "a.xlsx", remoteBase("https://host/x/a.xlsx?dl=1"))
	assert.Equal(t, "download", remoteBase("https://host/"))
	assert.Equal(t, "b.csv", remoteBase(filepath.Join("dir", "b.csv")))
}

func TestLoadLegacyDump(t *testing.T) {
	dump := `{"listas": [
		{"nombre": "Marzo", "vigente_desde": "2024-03-01", "articulos": [{"codigo": "A", "precio": 1}]},
		{"nombre": "Febrero", "vigente_desde": "2024-02-01", "articulos": []}
	]}`
	lists, err := LoadLegacyDump(strings.NewReader(dump))
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "Marzo__2024-03-01", lists[0].ID)
	assert.Len(t, lists[0].Items, 1)
	assert.Empty(t, lists[1].Items)

	_, err = LoadLegacyDump(strings.NewReader("{"))
	assert.Error(t, err)
}
