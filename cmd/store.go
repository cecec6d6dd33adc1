package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/pricelist-cli/internal/catalog"
	"github.com/sells-group/pricelist-cli/internal/db"
	"github.com/sells-group/pricelist-cli/internal/fetcher"
	"github.com/sells-group/pricelist-cli/internal/ingest"
	"github.com/sells-group/pricelist-cli/internal/report"
	"github.com/sells-group/pricelist-cli/internal/store"
	"github.com/sells-group/pricelist-cli/pkg/github"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "pricelist.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("postgres database url is required (PRICELIST_STORE_DATABASE_URL)")
		}
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, db.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	case "github":
		if err := cfg.Validate("store"); err != nil {
			return nil, err
		}
		opts := []github.Option{
			github.WithRateLimit(cfg.GitHub.RequestsPerSecond),
		}
		if cfg.GitHub.Branch != "" {
			opts = append(opts, github.WithBranch(cfg.GitHub.Branch))
		}
		if cfg.GitHub.BaseURL != "" {
			opts = append(opts, github.WithBaseURL(cfg.GitHub.BaseURL))
		}
		client := github.NewClient(cfg.GitHub.Token, cfg.GitHub.Repo, opts...)
		return store.NewGitHub(client, cfg.GitHub.Path), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openCatalog opens and migrates the configured store. The returned close
// func releases it.
func openCatalog(ctx context.Context) (*catalog.Service, func(), error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, nil, eris.Wrap(err, "migrate store")
	}
	svc := catalog.New(st, catalog.WithHistoryCap(cfg.History.Cap))
	return svc, func() { _ = st.Close() }, nil
}

func newLoader() *ingest.Loader {
	timeout := time.Duration(cfg.Fetch.TimeoutSecs) * time.Second
	return ingest.NewLoader(fetcher.Router{
		HTTP: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    timeout,
			MaxRetries: cfg.Fetch.MaxRetries,
		}),
		FTP: fetcher.NewFTPFetcher(fetcher.FTPOptions{Timeout: timeout}),
	})
}

func newFormatter() (*report.Formatter, error) {
	if cfg.Display.Locale == "" && cfg.Display.Currency == "" {
		return report.DefaultFormatter(), nil
	}
	return report.NewFormatter(cfg.Display.Locale, cfg.Display.Currency)
}
