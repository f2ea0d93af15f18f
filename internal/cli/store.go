package cli

import (
	"context"
	"fmt"
	"log/slog"

	"timetracker/internal/config"
	"timetracker/internal/service"
	"timetracker/internal/store/memory"
	"timetracker/internal/store/sqlstore"
	"timetracker/internal/store/sqlstore/driver"
)

// openStore opens the configured backend. SQL backends are migrated first so
// that serve and sweep work against a fresh database.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (service.TaskStore, func() error, error) {
	if cfg.Backend == config.BackendMemory {
		logger.Warn("using in-memory store, tasks are lost on exit")
		return memory.New(), func() error { return nil }, nil
	}

	s, err := openSQLStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("store ready", "backend", s.Dialect())
	return s, s.Close, nil
}

func openSQLStore(ctx context.Context, cfg config.StoreConfig) (*sqlstore.TaskStore, error) {
	dialect, err := driver.ParseDialect(cfg.Backend)
	if err != nil {
		return nil, err
	}

	s, err := sqlstore.Open(dialect, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", dialect, err)
	}

	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate %s store: %w", dialect, err)
	}

	return s, nil
}
