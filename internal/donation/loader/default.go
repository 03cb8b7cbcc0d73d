package loader

import (
	"context"
	"sync"

	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"
	"vitamend-data/internal/shared/logger"
)

var (
	defaultMu     sync.Mutex
	defaultLoader *Loader
)

// Default returns the process-wide loader, reading the configuration from the
// environment on first use.
func Default() *Loader {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultLoader == nil {
		cfg, err := config.Load()
		if err != nil {
			logger.Default().Errorf("Falling back to %s: %v", model.DefaultProvider, err)
			cfg = &config.Config{Provider: model.DefaultProvider}
		}
		defaultLoader = New(cfg, logger.Default())
	}
	return defaultLoader
}

// SetDefault replaces the process-wide loader.
func SetDefault(l *Loader) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLoader = l
}

// GetDB resolves the adapter of the process-wide loader.
func GetDB(ctx context.Context) (repository.DatabaseAdapter, error) {
	return Default().Get(ctx)
}

// GetDBSync returns the adapter of the process-wide loader if it was resolved.
func GetDBSync() (repository.DatabaseAdapter, error) {
	return Default().Sync()
}
