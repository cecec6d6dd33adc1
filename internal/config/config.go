package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/pricelist-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig          `yaml:"store" mapstructure:"store"`
	GitHub    GitHubConfig         `yaml:"github" mapstructure:"github"`
	Discounts model.DiscountConfig `yaml:"discounts" mapstructure:"discounts"`
	History   HistoryConfig        `yaml:"history" mapstructure:"history"`
	Server    ServerConfig         `yaml:"server" mapstructure:"server"`
	Log       LogConfig            `yaml:"log" mapstructure:"log"`
	Display   DisplayConfig        `yaml:"display" mapstructure:"display"`
	Fetch     FetchConfig          `yaml:"fetch" mapstructure:"fetch"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// GitHubConfig locates the lists document for the github store driver.
type GitHubConfig struct {
	Token             string  `yaml:"token" mapstructure:"token"`
	Repo              string  `yaml:"repo" mapstructure:"repo"`
	Branch            string  `yaml:"branch" mapstructure:"branch"`
	Path              string  `yaml:"path" mapstructure:"path"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// HistoryConfig bounds the list history.
type HistoryConfig struct {
	Cap int `yaml:"cap" mapstructure:"cap"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DisplayConfig selects how amounts are rendered.
type DisplayConfig struct {
	Locale   string `yaml:"locale" mapstructure:"locale"`
	Currency string `yaml:"currency" mapstructure:"currency"`
}

// FetchConfig configures remote source downloads.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	// .env is optional; variables already set win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PRICELIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	def := model.DefaultDiscounts()
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "pricelist.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("github.branch", "main")
	v.SetDefault("github.path", "data/price_lists.json")
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("github.requests_per_second", 5)
	v.SetDefault("github.token", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("discounts.tax_percent", def.TaxPercent)
	v.SetDefault("discounts.wholesale_discount1_percent", def.WholesaleDiscount1Percent)
	v.SetDefault("discounts.wholesale_discount2_percent", def.WholesaleDiscount2Percent)
	v.SetDefault("discounts.wholesale_discount3_percent", def.WholesaleDiscount3Percent)
	v.SetDefault("history.cap", 10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("display.locale", "es-AR")
	v.SetDefault("display.currency", "ARS")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.user_agent", "pricelist-cli/1.0")
	v.SetDefault("fetch.max_retries", 3)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on.
// Modes: "store" (any command touching persistence) and "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "store", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	case "github":
		if c.GitHub.Token == "" {
			errs = append(errs, "github.token is required")
		}
		if c.GitHub.Repo == "" || !strings.Contains(c.GitHub.Repo, "/") {
			errs = append(errs, "github.repo must be owner/name")
		}
		if c.GitHub.Path == "" {
			errs = append(errs, "github.path is required")
		}
	default:
		errs = append(errs, "store.driver must be sqlite, postgres or github")
	}
	if err := c.Discounts.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.History.Cap < 0 {
		errs = append(errs, "history.cap must be >= 0")
	}

	if mode == "serve" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, "server.port must be > 0 and <= 65535")
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
