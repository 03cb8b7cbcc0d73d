package cache

import (
	"context"

	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/shared/eventbus"
	"vitamend-data/internal/shared/logger"
)

// listKeys maps bus events to the list reads they make stale.
var listKeys = map[string]string{
	eventbus.EventTypeDonationSubmitted:     "donations",
	eventbus.EventTypeDonationStatusChanged: "donations",
	eventbus.EventTypeVolunteerSubmitted:    "volunteers",
	eventbus.EventTypeMedicineChanged:       "medicines",
	eventbus.EventTypeDatabaseInitialized:   "medicines",
}

// InvalidateOnEvents drops cached reads when the bridge writes to its store
// directly, bypassing the decorated adapter. provider names the adapter whose
// keys are dropped. The returned function cancels the subscriptions.
func InvalidateOnEvents(bus eventbus.EventBusInterface, store Store, provider func() model.Provider, log logger.Logger) func() {
	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.WithComponent("adapter-cache")

	ids := make([]eventbus.SubscriptionID, 0, len(listKeys))
	for eventType, list := range listKeys {
		list := list
		ids = append(ids, bus.Subscribe(eventType, func(ctx context.Context, e eventbus.Event) error {
			p := provider()
			keys := []string{Key(p, list)}
			if id, ok := e.Data().(string); ok && id != "" && e.Type() == eventbus.EventTypeMedicineChanged {
				keys = append(keys, Key(p, "medicine", id))
			}
			if err := store.Del(ctx, keys...); err != nil {
				log.Warnf("cache invalidation failed for %v: %v", keys, err)
			}
			return nil
		}))
	}

	return func() {
		for _, id := range ids {
			bus.Cancel(id)
		}
	}
}
