// Package usecase holds the consumer-facing helpers built on top of the
// loader: cached read queries, donation workflows and the medicine feed.
package usecase

import (
	"context"
	"sync"

	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"
)

// AdapterSource resolves the active adapter. *loader.Loader implements it.
type AdapterSource interface {
	Get(ctx context.Context) (repository.DatabaseAdapter, error)
	Generation() uint64
}

// QueryState is a snapshot of a query.
type QueryState[T any] struct {
	Data    T
	Loading bool
	Error   error
}

// Query caches the result of one read against the active adapter.
type Query[T any] struct {
	source AdapterSource
	fetch  func(ctx context.Context, a repository.DatabaseAdapter) T

	mu         sync.Mutex
	state      QueryState[T]
	fetched    bool
	generation uint64
}

// NewQuery creates a query that starts loading with initial as its data.
func NewQuery[T any](source AdapterSource, initial T, fetch func(ctx context.Context, a repository.DatabaseAdapter) T) *Query[T] {
	return &Query[T]{
		source: source,
		fetch:  fetch,
		state:  QueryState[T]{Data: initial, Loading: true},
	}
}

// NewDonationsQuery lists donations, newest first.
func NewDonationsQuery(source AdapterSource) *Query[[]model.Donation] {
	return NewQuery(source, []model.Donation{}, func(ctx context.Context, a repository.DatabaseAdapter) []model.Donation {
		return a.GetDonations(ctx)
	})
}

// NewMedicinesQuery lists available medicines, newest first.
func NewMedicinesQuery(source AdapterSource) *Query[[]model.Medicine] {
	return NewQuery(source, []model.Medicine{}, func(ctx context.Context, a repository.DatabaseAdapter) []model.Medicine {
		return a.GetMedicines(ctx)
	})
}

// NewVolunteersQuery lists volunteer applications, newest first.
func NewVolunteersQuery(source AdapterSource) *Query[[]model.Volunteer] {
	return NewQuery(source, []model.Volunteer{}, func(ctx context.Context, a repository.DatabaseAdapter) []model.Volunteer {
		return a.GetVolunteers(ctx)
	})
}

// State returns the latest snapshot.
func (q *Query[T]) State() QueryState[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Load resolves the active adapter and fetches unless the cached data came
// from it.
func (q *Query[T]) Load(ctx context.Context) QueryState[T] {
	adapter, err := q.source.Get(ctx)
	if err != nil {
		return q.fail(err)
	}

	q.mu.Lock()
	fresh := q.fetched && q.generation == q.source.Generation()
	state := q.state
	q.mu.Unlock()

	if fresh {
		return state
	}
	return q.run(ctx, adapter)
}

// Refetch always runs the read. On a resolution error the previous data is kept.
func (q *Query[T]) Refetch(ctx context.Context) QueryState[T] {
	q.mu.Lock()
	q.state.Loading = true
	q.mu.Unlock()

	adapter, err := q.source.Get(ctx)
	if err != nil {
		return q.fail(err)
	}
	return q.run(ctx, adapter)
}

func (q *Query[T]) run(ctx context.Context, adapter repository.DatabaseAdapter) QueryState[T] {
	generation := q.source.Generation()
	data := q.fetch(ctx, adapter)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.state = QueryState[T]{Data: data}
	q.fetched = true
	q.generation = generation
	return q.state
}

func (q *Query[T]) fail(err error) QueryState[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.state.Loading = false
	q.state.Error = err
	return q.state
}
