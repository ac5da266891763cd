// Package backend selects and constructs the persistence backend the
// ledger runs on.
package backend

import (
	"context"
	"fmt"

	"tally/internal/config"
	"tally/internal/ledger"
	"tally/internal/log"
	"tally/internal/storage"
)

// Result bundles a constructed persister with its cleanup hook. Cleanup
// may be nil when the backend holds no resources.
type Result struct {
	Persister ledger.Persister
	Cleanup   func() error
}

// Factory builds persisters from configuration.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	return &Factory{logger: logger}
}

// Create builds the persister named by cfg.Backend.
func (f *Factory) Create(ctx context.Context, cfg *config.Config) (*Result, error) {
	switch cfg.Backend {
	case "memory":
		return f.createMemory()
	case "sqlite":
		return f.createSQLite(cfg)
	case "postgres":
		return f.createPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}

func (f *Factory) createMemory() (*Result, error) {
	f.logger.Info("Initialized memory backend")
	return &Result{Persister: storage.NewMemoryPersister()}, nil
}

func (f *Factory) createSQLite(cfg *config.Config) (*Result, error) {
	p, err := storage.NewSQLitePersister(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite backend: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", log.FieldBackend, "sqlite", "db_path", cfg.SQLitePath)
	return &Result{Persister: p, Cleanup: p.Close}, nil
}

func (f *Factory) createPostgres(ctx context.Context, cfg *config.Config) (*Result, error) {
	p, err := storage.NewPostgresPersister(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("initialize postgres backend: %w", err)
	}
	f.logger.Info("Initialized Postgres backend", log.FieldBackend, "postgres")
	return &Result{Persister: p, Cleanup: func() error { p.Close(); return nil }}, nil
}
