// Package cache decorates a DatabaseAdapter with a read-through cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"
	"vitamend-data/internal/shared/logger"
)

const keyPrefix = "vitamend"

// CachedAdapter caches list reads and medicine lookups. Cache failures are
// logged and the wrapped adapter is used instead.
type CachedAdapter struct {
	repository.DatabaseAdapter
	store Store
	ttl   time.Duration
	log   logger.Logger
}

// Wrap returns inner decorated with a cache backed by store.
func Wrap(inner repository.DatabaseAdapter, store Store, ttl time.Duration, log logger.Logger) *CachedAdapter {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedAdapter{
		DatabaseAdapter: inner,
		store:           store,
		ttl:             ttl,
		log:             log.WithComponent("adapter-cache"),
	}
}

// Unwrap returns the decorated adapter.
func (c *CachedAdapter) Unwrap() repository.DatabaseAdapter {
	return c.DatabaseAdapter
}

// Close closes the decorated adapter when it holds connections.
func (c *CachedAdapter) Close() error {
	if closer, ok := c.DatabaseAdapter.(repository.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *CachedAdapter) key(parts ...string) string {
	return Key(c.Provider(), parts...)
}

// Key is the cache key of one read for provider p.
func Key(p model.Provider, parts ...string) string {
	k := fmt.Sprintf("%s:%s", keyPrefix, p)
	for _, part := range parts {
		k += ":" + part
	}
	return k
}

func (c *CachedAdapter) load(ctx context.Context, key string, out interface{}) bool {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.log.Warnf("cache read failed for %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warnf("discarding undecodable cache entry %s: %v", key, err)
		return false
	}
	return true
}

func (c *CachedAdapter) save(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.Warnf("cache write failed for %s: %v", key, err)
	}
}

func (c *CachedAdapter) invalidate(ctx context.Context, keys ...string) {
	if err := c.store.Del(ctx, keys...); err != nil {
		c.log.Warnf("cache invalidation failed for %v: %v", keys, err)
	}
}

func (c *CachedAdapter) InitDatabase(ctx context.Context) model.InitResult {
	res := c.DatabaseAdapter.InitDatabase(ctx)
	if res.Success && !res.AlreadyInitialized {
		c.invalidate(ctx, c.key("medicines"))
	}
	return res
}

func (c *CachedAdapter) SubmitDonation(ctx context.Context, input model.DonationInput, imageURLs []string) model.DbResult[model.CreatedID] {
	res := c.DatabaseAdapter.SubmitDonation(ctx, input, imageURLs)
	if res.Success {
		c.invalidate(ctx, c.key("donations"))
	}
	return res
}

func (c *CachedAdapter) GetDonations(ctx context.Context) []model.Donation {
	key := c.key("donations")
	var cached []model.Donation
	if c.load(ctx, key, &cached) {
		return cached
	}
	donations := c.DatabaseAdapter.GetDonations(ctx)
	if len(donations) > 0 {
		c.save(ctx, key, donations)
	}
	return donations
}

func (c *CachedAdapter) UpdateDonationStatus(ctx context.Context, id string, status model.DonationStatus) model.DbResult[model.Empty] {
	res := c.DatabaseAdapter.UpdateDonationStatus(ctx, id, status)
	if res.Success {
		c.invalidate(ctx, c.key("donations"))
	}
	return res
}

func (c *CachedAdapter) GetMedicines(ctx context.Context) []model.Medicine {
	key := c.key("medicines")
	var cached []model.Medicine
	if c.load(ctx, key, &cached) {
		return cached
	}
	medicines := c.DatabaseAdapter.GetMedicines(ctx)
	if len(medicines) > 0 {
		c.save(ctx, key, medicines)
	}
	return medicines
}

func (c *CachedAdapter) GetMedicineByID(ctx context.Context, id string) *model.Medicine {
	key := c.key("medicine", id)
	var cached model.Medicine
	if c.load(ctx, key, &cached) {
		return &cached
	}
	medicine := c.DatabaseAdapter.GetMedicineByID(ctx, id)
	if medicine != nil {
		c.save(ctx, key, medicine)
	}
	return medicine
}

func (c *CachedAdapter) SubmitVolunteer(ctx context.Context, input model.VolunteerInput) model.DbResult[model.CreatedID] {
	res := c.DatabaseAdapter.SubmitVolunteer(ctx, input)
	if res.Success {
		c.invalidate(ctx, c.key("volunteers"))
	}
	return res
}

func (c *CachedAdapter) GetVolunteers(ctx context.Context) []model.Volunteer {
	key := c.key("volunteers")
	var cached []model.Volunteer
	if c.load(ctx, key, &cached) {
		return cached
	}
	volunteers := c.DatabaseAdapter.GetVolunteers(ctx)
	if len(volunteers) > 0 {
		c.save(ctx, key, volunteers)
	}
	return volunteers
}
