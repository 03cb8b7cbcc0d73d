// Package loader resolves the configured DatabaseAdapter once and caches it.
package loader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"
	apperrors "vitamend-data/internal/shared/errors"
	"vitamend-data/internal/shared/logger"
)

// Factory builds the adapter for one provider. It is invoked at most once per
// resolution and must report missing configuration as a configuration error.
type Factory func(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.DatabaseAdapter, error)

// Decorator wraps a freshly built adapter.
type Decorator func(repository.DatabaseAdapter) repository.DatabaseAdapter

var (
	registryMu sync.RWMutex
	registry   = map[model.Provider]Factory{}
)

// Register adds f to the factories copied into every new Loader. It is meant
// to be called from init functions.
func Register(p model.Provider, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[p] = f
}

// Loader owns the single active adapter.
type Loader struct {
	mu         sync.Mutex
	cfg        *config.Config
	factories  map[model.Provider]Factory
	decorators []Decorator
	current    repository.DatabaseAdapter
	provider   model.Provider
	generation atomic.Uint64
	log        logger.Logger
}

// New creates a Loader for cfg holding every factory registered so far.
func New(cfg *config.Config, log logger.Logger) *Loader {
	if log == nil {
		log = logger.NewNopLogger()
	}

	registryMu.RLock()
	factories := make(map[model.Provider]Factory, len(registry))
	for p, f := range registry {
		factories[p] = f
	}
	registryMu.RUnlock()

	return &Loader{
		cfg:       cfg,
		factories: factories,
		log:       log.WithComponent("db-loader"),
	}
}

// Register sets the factory for p on this loader only.
func (l *Loader) Register(p model.Provider, f Factory) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.factories[p] = f
}

// Use appends decorators applied, in order, to every adapter resolved after the call.
func (l *Loader) Use(d ...Decorator) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.decorators = append(l.decorators, d...)
}

// Config returns the active configuration.
func (l *Loader) Config() *config.Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg
}

// Get returns the cached adapter, resolving it first when nothing is cached
// or the configured provider changed. Concurrent callers share one resolution.
func (l *Loader) Get(ctx context.Context) (repository.DatabaseAdapter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	want := l.cfg.Provider
	if l.current != nil {
		if l.provider == want {
			return l.current, nil
		}
		l.dropLocked()
	}

	factory, ok := l.factories[want]
	if !ok {
		return nil, fmt.Errorf("unknown database provider: %s", want)
	}

	log := l.log.WithFields(map[string]interface{}{"provider": string(want)})
	adapter, err := factory(ctx, l.cfg, log)
	if err != nil {
		if apperrors.IsConfiguration(err) {
			log.Errorf("Adapter configuration invalid: %v", err)
		} else {
			log.Errorf("Adapter construction failed: %v", err)
		}
		return nil, err
	}
	for _, d := range l.decorators {
		adapter = d(adapter)
	}

	l.current = adapter
	l.provider = want
	l.generation.Add(1)
	log.Infof("Database adapter resolved")
	return adapter, nil
}

// Sync returns the cached adapter without resolving.
func (l *Loader) Sync() (repository.DatabaseAdapter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return nil, apperrors.ErrNotInitialized
	}
	return l.current, nil
}

// Reconfigure swaps the configuration. When the provider changes the cached
// adapter is closed right away, so Sync fails until Get resolves the new one.
func (l *Loader) Reconfigure(cfg *config.Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg = cfg
	if l.current != nil && l.provider != cfg.Provider {
		l.dropLocked()
	}
}

// InitializeDatabase resolves the adapter and provisions its schema.
func (l *Loader) InitializeDatabase(ctx context.Context) (model.InitResult, error) {
	adapter, err := l.Get(ctx)
	if err != nil {
		return model.InitResult{}, err
	}
	return adapter.InitDatabase(ctx), nil
}

// Generation changes whenever the active adapter is built or dropped.
func (l *Loader) Generation() uint64 {
	return l.generation.Load()
}

// Close releases the cached adapter.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

// dropLocked closes the adapter of a provider that is no longer configured.
func (l *Loader) dropLocked() {
	old := l.provider
	if err := l.closeLocked(); err != nil {
		l.log.Warnf("Closing %s adapter failed: %v", old, err)
	}
	l.generation.Add(1)
}

func (l *Loader) closeLocked() error {
	if l.current == nil {
		return nil
	}
	var err error
	if closer, ok := l.current.(repository.Closer); ok {
		err = closer.Close()
	}
	l.current = nil
	l.provider = ""
	return err
}
