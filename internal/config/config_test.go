package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// chdirTemp changes into a fresh temp dir so no config.yaml or .env is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "pricelist.db", cfg.Store.DatabaseURL)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, "main", cfg.GitHub.Branch)
	assert.Equal(t, "data/price_lists.json", cfg.GitHub.Path)
	assert.Equal(t, "https://api.github.com", cfg.GitHub.BaseURL)
	assert.InDelta(t, 5.0, cfg.GitHub.RequestsPerSecond, 1e-9)
	assert.InDelta(t, 21.0, cfg.Discounts.TaxPercent, 1e-9)
	assert.InDelta(t, 15.0, cfg.Discounts.WholesaleDiscount1Percent, 1e-9)
	assert.InDelta(t, 25.0, cfg.Discounts.WholesaleDiscount2Percent, 1e-9)
	assert.InDelta(t, 35.0, cfg.Discounts.WholesaleDiscount3Percent, 1e-9)
	assert.Equal(t, 10, cfg.History.Cap)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "es-AR", cfg.Display.Locale)
	assert.Equal(t, "ARS", cfg.Display.Currency)
	assert.Equal(t, 30, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, "pricelist-cli/1.0", cfg.Fetch.UserAgent)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/prices
discounts:
  tax_percent: 10.5
  wholesale_discount3_percent: 40
history:
  cap: 3
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/prices", cfg.Store.DatabaseURL)
	assert.InDelta(t, 10.5, cfg.Discounts.TaxPercent, 1e-9)
	assert.InDelta(t, 40.0, cfg.Discounts.WholesaleDiscount3Percent, 1e-9)
	assert.Equal(t, 3, cfg.History.Cap)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.InDelta(t, 15.0, cfg.Discounts.WholesaleDiscount1Percent, 1e-9)
	assert.Equal(t, "es-AR", cfg.Display.Locale)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("PRICELIST_STORE_DRIVER", "github")
	t.Setenv("PRICELIST_LOG_LEVEL", "warn")
	t.Setenv("PRICELIST_DISCOUNTS_TAX_PERCENT", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "github", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Zero(t, cfg.Discounts.TaxPercent)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PRICELIST_GITHUB_TOKEN=ghp_test\nPRICELIST_SERVER_PORT=3000\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("PRICELIST_GITHUB_TOKEN") //nolint:errcheck
		os.Unsetenv("PRICELIST_SERVER_PORT")  //nolint:errcheck
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ghp_test", cfg.GitHub.Token)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "pricelist.db"
	cfg.History.Cap = 10
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateStore_SQLite(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("store"))
}

func TestValidateStore_MissingURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateStore_GitHub(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "github"

	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "github.token is required")
	assert.Contains(t, err.Error(), "github.repo must be owner/name")

	cfg.GitHub.Token = "ghp_x"
	cfg.GitHub.Repo = "acme/precios"
	cfg.GitHub.Path = "data/price_lists.json"
	assert.NoError(t, cfg.Validate("store"))
}

func TestValidateStore_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be")
}

func TestValidateHistoryCap(t *testing.T) {
	cfg := validDefaults()
	cfg.History.Cap = -1
	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "history.cap")
}

func TestValidateDiscounts_NonFinite(t *testing.T) {
	cfg := validDefaults()
	cfg.Discounts.TaxPercent = math.NaN()
	cfg.Discounts.WholesaleDiscount3Percent = math.Inf(-1)
	err := cfg.Validate("store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tax_percent, wholesale_discount3_percent must be finite")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	cfg.Server.Port = 9090
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
