package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"vitamend-data/internal/donation/adapter/persistence/adaptertest"
	"vitamend-data/internal/donation/adapter/persistence/mock"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"
	"vitamend-data/internal/shared/eventbus"
	"vitamend-data/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	fail    bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string][]byte{}}
}

func (m *memoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errors.New("redis: connection refused")
	}
	v, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (m *memoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("redis: connection refused")
	}
	m.entries[key] = value
	return nil
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("redis: connection refused")
	}
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memoryStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func TestCachedAdapter_Contract(t *testing.T) {
	adaptertest.Run(t, adaptertest.Harness{
		New: func(t *testing.T) repository.DatabaseAdapter {
			return Wrap(mock.New(nil), newMemoryStore(), time.Minute, nil)
		},
		AddMedicine: func(t *testing.T, a repository.DatabaseAdapter, m model.Medicine) {
			a.(*CachedAdapter).Unwrap().(*mock.Adapter).AddMedicine(m)
		},
		Storage: true,
		Pause:   2 * time.Millisecond,
	})
}

func TestCachedAdapter_ServesMedicinesFromCache(t *testing.T) {
	inner := mock.New(nil)
	store := newMemoryStore()
	c := Wrap(inner, store, time.Minute, nil)
	ctx := context.Background()

	require.True(t, c.InitDatabase(ctx).Success)
	first := c.GetMedicines(ctx)
	require.Len(t, first, 2)
	assert.True(t, store.has("vitamend:mock:medicines"))

	inner.AddMedicine(model.Medicine{Name: "Uncached", Available: true, CreatedAt: time.Now()})
	assert.Len(t, c.GetMedicines(ctx), 2)

	require.NoError(t, store.Del(ctx, "vitamend:mock:medicines"))
	assert.Len(t, c.GetMedicines(ctx), 3)

	byID := c.GetMedicineByID(ctx, first[0].ID)
	require.NotNil(t, byID)
	assert.True(t, store.has("vitamend:mock:medicine:"+first[0].ID))
	assert.Equal(t, first[0].Name, c.GetMedicineByID(ctx, first[0].ID).Name)
}

func TestCachedAdapter_WritesInvalidate(t *testing.T) {
	c := Wrap(mock.New(nil), newMemoryStore(), time.Minute, nil)
	ctx := context.Background()

	assert.Empty(t, c.GetDonations(ctx))
	res := c.SubmitDonation(ctx, adaptertest.SampleDonation("A"), nil)
	require.True(t, res.Success)
	require.Len(t, c.GetDonations(ctx), 1)

	require.True(t, c.SubmitDonation(ctx, adaptertest.SampleDonation("B"), nil).Success)
	assert.Len(t, c.GetDonations(ctx), 2)

	require.True(t, c.UpdateDonationStatus(ctx, res.Data.ID, model.DonationStatusRejected).Success)
	for _, d := range c.GetDonations(ctx) {
		if d.ID == res.Data.ID {
			assert.Equal(t, model.DonationStatusRejected, d.Status)
		}
	}

	require.Len(t, c.GetVolunteers(ctx), 0)
	require.True(t, c.SubmitVolunteer(ctx, model.VolunteerInput{FullName: "V"}).Success)
	require.Len(t, c.GetVolunteers(ctx), 1)
	require.True(t, c.SubmitVolunteer(ctx, model.VolunteerInput{FullName: "W"}).Success)
	assert.Len(t, c.GetVolunteers(ctx), 2)
}

func TestInvalidateOnEvents_DirectStoreWrites(t *testing.T) {
	inner := mock.New(nil)
	store := newMemoryStore()
	c := Wrap(inner, store, time.Minute, nil)
	bus := eventbus.NewEventBusWithConfig(logger.NewNopLogger(), eventbus.BusConfig{})
	ctx := context.Background()

	stop := InvalidateOnEvents(bus, store, c.Provider, nil)
	assert.Equal(t, 1, bus.GetSubscriberCount(eventbus.EventTypeMedicineChanged))

	id := inner.AddMedicine(model.Medicine{Name: "Paracetamol", Available: true, CreatedAt: time.Now()})
	require.Len(t, c.GetMedicines(ctx), 1)
	require.NotNil(t, c.GetMedicineByID(ctx, id))

	inner.AddMedicine(model.Medicine{Name: "Ibuprofen", Available: true, CreatedAt: time.Now()})
	require.Len(t, c.GetMedicines(ctx), 1)

	require.NoError(t, bus.Publish(ctx, eventbus.NewBasicEvent(eventbus.EventTypeMedicineChanged, id)))
	assert.False(t, store.has("vitamend:mock:medicine:"+id))
	assert.Len(t, c.GetMedicines(ctx), 2)

	require.True(t, inner.SubmitVolunteer(ctx, model.VolunteerInput{FullName: "V"}).Success)
	require.Len(t, c.GetVolunteers(ctx), 1)
	require.True(t, inner.SubmitVolunteer(ctx, model.VolunteerInput{FullName: "W"}).Success)
	require.NoError(t, bus.Publish(ctx, eventbus.NewBasicEvent(eventbus.EventTypeVolunteerSubmitted, "w")))
	assert.Len(t, c.GetVolunteers(ctx), 2)

	stop()
	assert.Zero(t, bus.GetSubscriberCount(eventbus.EventTypeMedicineChanged))
}

func TestCachedAdapter_FallsThroughOnCacheFailure(t *testing.T) {
	store := newMemoryStore()
	store.fail = true
	c := Wrap(mock.New(nil), store, time.Minute, nil)
	ctx := context.Background()

	require.True(t, c.InitDatabase(ctx).Success)
	assert.Len(t, c.GetMedicines(ctx), 2)
	require.True(t, c.SubmitDonation(ctx, adaptertest.SampleDonation("A"), nil).Success)
	assert.Len(t, c.GetDonations(ctx), 1)
}

func TestCachedAdapter_KeysArePerProvider(t *testing.T) {
	c := Wrap(mock.New(nil), newMemoryStore(), 0, nil)
	assert.Equal(t, "vitamend:mock:medicines", c.key("medicines"))
	assert.Equal(t, 30*time.Second, c.ttl)
	assert.NotNil(t, c.Unwrap())
	assert.NoError(t, c.Close())
}

func TestRedisStore_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DB:          15,
		DialTimeout: time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available for testing:", err)
	}

	store := NewRedisStore(client)
	defer store.Close()
	key := "vitamend:test:" + time.Now().Format(time.RFC3339Nano)

	_, err := store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Set(ctx, key, []byte(`[1]`), time.Minute))
	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), got)

	require.NoError(t, store.Del(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)
}
