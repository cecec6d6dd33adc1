//go:build !integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pricelist-cli/internal/config"
	"github.com/sells-group/pricelist-cli/internal/store"
)

func TestInitStore_SQLite(t *testing.T) {
	useTestConfig(t)

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	_, ok := st.(*store.SQLiteStore)
	assert.True(t, ok)
}

func TestInitStore_SQLiteDefaultDSN(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	cfg = &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	_, statErr := os.Stat(filepath.Join(tmpDir, "pricelist.db"))
	assert.NoError(t, statErr)
}

func TestInitStore_PostgresRequiresURL(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "postgres"}}

	st, err := initStore(context.Background())
	assert.Nil(t, st)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database url is required")
}

func TestInitStore_GitHub(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "github"},
		GitHub: config.GitHubConfig{
			Token:   "tok",
			Repo:    "acme/precios",
			Branch:  "main",
			Path:    "data/price_lists.json",
			BaseURL: "http://127.0.0.1:1",
		},
	}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	_, ok := st.(*store.GitHubStore)
	assert.True(t, ok)
}

func TestInitStore_GitHubInvalidConfig(t *testing.T) {
	cfg = &config.Config{
		Store:  config.StoreConfig{Driver: "github"},
		GitHub: config.GitHubConfig{Repo: "no-slash"},
	}

	st, err := initStore(context.Background())
	assert.Nil(t, st)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "github.token is required")
}

func TestInitStore_UnknownDriver(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "mysql"}}

	st, err := initStore(context.Background())
	assert.Nil(t, st)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestOpenCatalog_AppliesHistoryCap(t *testing.T) {
	useTestConfig(t)
	cfg.History.Cap = 3

	svc := openTestCatalog(t)
	assert.Equal(t, 3, svc.HistoryCap())
}

func TestNewFormatter(t *testing.T) {
	cfg = &config.Config{}
	f, err := newFormatter()
	require.NoError(t, err)
	assert.Equal(t, "$ 1.234,50", f.Money(1234.5))

	cfg.Display = config.DisplayConfig{Locale: "en-US", Currency: "USD"}
	f, err = newFormatter()
	require.NoError(t, err)
	assert.Equal(t, "$ 1,234.50", f.Money(1234.5))

	cfg.Display = config.DisplayConfig{Locale: "es-AR", Currency: "nope"}
	_, err = newFormatter()
	assert.Error(t, err)
}
