package usecase

import (
	"context"
	"sync"
	"sync/atomic"

	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/shared/eventbus"
	"vitamend-data/internal/shared/logger"
)

// MedicineFeed pushes the medicine list to subscribers whenever it changes.
type MedicineFeed struct {
	source AdapterSource
	bus    eventbus.EventBusInterface
	log    logger.Logger
}

// NewMedicineFeed creates a feed listening on bus.
func NewMedicineFeed(source AdapterSource, bus eventbus.EventBusInterface, log logger.Logger) *MedicineFeed {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &MedicineFeed{source: source, bus: bus, log: log.WithComponent("medicine-feed")}
}

// ListAvailableMedicines reads the catalog of the active adapter.
func (f *MedicineFeed) ListAvailableMedicines(ctx context.Context) ([]model.Medicine, error) {
	adapter, err := f.source.Get(ctx)
	if err != nil {
		return nil, err
	}
	return adapter.GetMedicines(ctx), nil
}

// Subscribe calls callback with the current list, then again after every
// medicine change. Callbacks never overlap. The returned function stops the
// subscription; cancelling ctx does the same.
func (f *MedicineFeed) Subscribe(ctx context.Context, callback func([]model.Medicine)) (func(), error) {
	adapter, err := f.source.Get(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		stopped atomic.Bool
	)
	deliver := func(medicines []model.Medicine) {
		mu.Lock()
		defer mu.Unlock()
		if !stopped.Load() {
			callback(medicines)
		}
	}

	deliver(adapter.GetMedicines(ctx))

	id := f.bus.Subscribe(eventbus.EventTypeMedicineChanged, func(evtCtx context.Context, _ eventbus.Event) error {
		current, err := f.source.Get(evtCtx)
		if err != nil {
			f.log.Warnf("Skipping medicine refresh: %v", err)
			return nil
		}
		deliver(current.GetMedicines(evtCtx))
		return nil
	})

	var once sync.Once
	stop := make(chan struct{})
	unsubscribe := func() {
		once.Do(func() {
			stopped.Store(true)
			f.bus.Cancel(id)
			close(stop)
		})
	}

	if done := ctx.Done(); done != nil {
		go func() {
			select {
			case <-done:
				unsubscribe()
			case <-stop:
			}
		}()
	}
	return unsubscribe, nil
}
