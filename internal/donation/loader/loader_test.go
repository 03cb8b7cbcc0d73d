package loader

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vitamend-data/internal/donation/adapter/persistence/mock"
	"vitamend-data/internal/donation/adapter/persistence/mysql"
	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"
	apperrors "vitamend-data/internal/shared/errors"
	"vitamend-data/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closingAdapter struct {
	*mock.Adapter
	closed atomic.Bool
}

func (c *closingAdapter) Close() error {
	c.closed.Store(true)
	return nil
}

func countingFactory(calls *int32, delay time.Duration) Factory {
	return func(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.DatabaseAdapter, error) {
		atomic.AddInt32(calls, 1)
		time.Sleep(delay)
		return &closingAdapter{Adapter: mock.New(log)}, nil
	}
}

func newTestLoader(p model.Provider) *Loader {
	l := New(&config.Config{Provider: p}, nil)
	l.factories = map[model.Provider]Factory{}
	return l
}

func TestLoader_ResolvesOnce(t *testing.T) {
	var calls int32
	l := newTestLoader(model.ProviderMock)
	l.Register(model.ProviderMock, countingFactory(&calls, 20*time.Millisecond))

	const callers = 16
	adapters := make([]repository.DatabaseAdapter, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := l.Get(context.Background())
			assert.NoError(t, err)
			adapters[i] = a
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, a := range adapters {
		assert.Same(t, adapters[0], a)
	}
	assert.Equal(t, uint64(1), l.Generation())
}

func TestLoader_SyncBeforeGet(t *testing.T) {
	l := newTestLoader(model.ProviderMock)
	l.Register(model.ProviderMock, countingFactory(new(int32), 0))

	_, err := l.Sync()
	require.ErrorIs(t, err, apperrors.ErrNotInitialized)
	assert.Equal(t, "Database not initialized. Call Get first.", err.Error())

	got, err := l.Get(context.Background())
	require.NoError(t, err)
	synced, err := l.Sync()
	require.NoError(t, err)
	assert.Same(t, got, synced)
}

func TestLoader_UnknownProvider(t *testing.T) {
	l := newTestLoader(model.Provider("cassandra"))
	_, err := l.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, "unknown database provider: cassandra", err.Error())
}

func TestLoader_ConfigurationErrorIsNotCached(t *testing.T) {
	var calls int32
	l := newTestLoader(model.ProviderSupabase)
	l.Register(model.ProviderSupabase, func(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.DatabaseAdapter, error) {
		atomic.AddInt32(&calls, 1)
		return nil, cfg.Supabase.Validate()
	})

	_, err := l.Get(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
	assert.Contains(t, err.Error(), "SUPABASE_DB_URL")

	_, err = l.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, uint64(0), l.Generation())
}

func TestLoader_ReconfigureSwapsAdapter(t *testing.T) {
	var mockCalls int32
	l := newTestLoader(model.ProviderMock)
	l.Register(model.ProviderMock, countingFactory(&mockCalls, 0))
	l.Register(model.ProviderMySQL, func(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.DatabaseAdapter, error) {
		return mysql.New(cfg.MySQL, log), nil
	})
	ctx := context.Background()

	first, err := l.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ProviderMock, first.Provider())

	l.Reconfigure(&config.Config{Provider: model.ProviderMock})
	same, err := l.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, same)

	l.Reconfigure(&config.Config{Provider: model.ProviderMySQL})
	assert.True(t, first.(*closingAdapter).closed.Load())
	assert.Equal(t, uint64(2), l.Generation())

	second, err := l.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ProviderMySQL, second.Provider())
	assert.Equal(t, uint64(3), l.Generation())
	assert.Equal(t, int32(1), atomic.LoadInt32(&mockCalls))
}

func TestLoader_FailedSwapLeavesNothingCached(t *testing.T) {
	l := newTestLoader(model.ProviderMock)
	l.Register(model.ProviderMock, countingFactory(new(int32), 0))
	l.Register(model.ProviderSupabase, func(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.DatabaseAdapter, error) {
		return nil, cfg.Supabase.Validate()
	})
	ctx := context.Background()

	first, err := l.Get(ctx)
	require.NoError(t, err)

	l.Reconfigure(&config.Config{Provider: model.ProviderSupabase})
	_, err = l.Get(ctx)
	require.Error(t, err)

	_, err = l.Sync()
	assert.ErrorIs(t, err, apperrors.ErrNotInitialized)
	assert.True(t, first.(*closingAdapter).closed.Load())

	l.Reconfigure(&config.Config{Provider: model.ProviderMock})
	again, err := l.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, again)
}

func TestLoader_Decorators(t *testing.T) {
	l := newTestLoader(model.ProviderMock)
	l.Register(model.ProviderMock, countingFactory(new(int32), 0))

	var order []string
	wrap := func(name string) Decorator {
		return func(a repository.DatabaseAdapter) repository.DatabaseAdapter {
			order = append(order, name)
			return a
		}
	}
	l.Use(wrap("cache"), wrap("metrics"))

	_, err := l.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cache", "metrics"}, order)
}

func TestLoader_InitializeDatabase(t *testing.T) {
	l := newTestLoader(model.ProviderMock)
	l.Register(model.ProviderMock, countingFactory(new(int32), 0))
	ctx := context.Background()

	first, err := l.InitializeDatabase(ctx)
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.False(t, first.AlreadyInitialized)

	second, err := l.InitializeDatabase(ctx)
	require.NoError(t, err)
	assert.True(t, second.AlreadyInitialized)

	_, err = newTestLoader(model.ProviderMock).InitializeDatabase(ctx)
	assert.Error(t, err)
}

func TestLoader_Close(t *testing.T) {
	l := newTestLoader(model.ProviderMock)
	l.Register(model.ProviderMock, countingFactory(new(int32), 0))

	a, err := l.Get(context.Background())
	require.NoError(t, err)
	require.NoError(t, l.Close())
	assert.True(t, a.(*closingAdapter).closed.Load())

	_, err = l.Sync()
	assert.ErrorIs(t, err, apperrors.ErrNotInitialized)
}

func TestRegister_CopiedIntoNewLoaders(t *testing.T) {
	p := model.Provider("registry-test")
	Register(p, countingFactory(new(int32), 0))
	t.Cleanup(func() {
		registryMu.Lock()
		delete(registry, p)
		registryMu.Unlock()
	})

	l := New(&config.Config{Provider: p}, nil)
	a, err := l.Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestDefaultLoader(t *testing.T) {
	l := newTestLoader(model.ProviderMock)
	l.Register(model.ProviderMock, countingFactory(new(int32), 0))
	SetDefault(l)
	t.Cleanup(func() { SetDefault(nil) })

	assert.Same(t, l, Default())
	_, err := GetDBSync()
	assert.ErrorIs(t, err, apperrors.ErrNotInitialized)

	a, err := GetDB(context.Background())
	require.NoError(t, err)
	synced, err := GetDBSync()
	require.NoError(t, err)
	assert.Same(t, a, synced)
}
