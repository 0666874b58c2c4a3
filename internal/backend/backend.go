// Package backend constructs the configured key-value store.
package backend

import (
	"fmt"
	"log/slog"

	"masroofy/internal/config"
	"masroofy/internal/kv"
)

// Result bundles an opened store with its cleanup function.
type Result struct {
	Store   kv.Store
	Cleanup func() error
}

// Open creates the kv backend named by cfg.DataBackend.
func Open(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.DataBackend {
	case "memory":
		store := kv.NewMemoryStore()
		logger.Info("Initialized memory backend")
		return &Result{Store: store, Cleanup: store.Close}, nil

	case "file":
		store, err := kv.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize file backend: %w", err)
		}
		logger.Info("Initialized file backend", "data_dir", cfg.DataDir)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case "sqlite":
		store, err := kv.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
