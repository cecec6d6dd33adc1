//go:build !integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/pricelist-cli/internal/catalog"
	"github.com/sells-group/pricelist-cli/internal/config"
	"github.com/sells-group/pricelist-cli/internal/model"
	"github.com/sells-group/pricelist-cli/internal/report"
)

// useTestConfig points the global config at a temp SQLite database.
func useTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(dir, "test.db"),
		},
		Discounts: model.DefaultDiscounts(),
		History:   config.HistoryConfig{Cap: 10},
		Display:   config.DisplayConfig{Locale: "es-AR", Currency: "ARS"},
		Fetch:     config.FetchConfig{TimeoutSecs: 5, MaxRetries: 1},
	}
	return dir
}

func openTestCatalog(t *testing.T) *catalog.Service {
	t.Helper()
	svc, closeFn, err := openCatalog(context.Background())
	require.NoError(t, err)
	t.Cleanup(closeFn)
	return svc
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func testFormatter(t *testing.T) *report.Formatter {
	t.Helper()
	f, err := newFormatter()
	require.NoError(t, err)
	return f
}
