package eventbus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DummyEvent implements Event for testing
type DummyEvent struct {
	typeStr   string
	data      interface{}
	timestamp time.Time
	source    string
}

func (e *DummyEvent) Type() string         { return e.typeStr }
func (e *DummyEvent) Data() interface{}    { return e.data }
func (e *DummyEvent) Timestamp() time.Time { return e.timestamp }
func (e *DummyEvent) Source() string       { return e.source }

func TestEventBus_SubscribePublish(t *testing.T) {
	bus := NewEventBus(nil)
	var called bool
	bus.Subscribe(EventTypeDonationSubmitted, func(ctx context.Context, event Event) error {
		called = true
		assert.Equal(t, EventTypeDonationSubmitted, event.Type())
		assert.Equal(t, "don-1", event.Data())
		return nil
	})
	err := bus.Publish(context.Background(), NewBasicEvent(EventTypeDonationSubmitted, "don-1"))
	assert.NoError(t, err)
	assert.True(t, called)
}

func TestEventBus_AsyncPublish(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{AsyncProcessing: true})
	ch := make(chan struct{}, 1)
	bus.Subscribe("async", func(ctx context.Context, event Event) error {
		ch <- struct{}{}
		return nil
	})
	_ = bus.Publish(context.Background(), &DummyEvent{typeStr: "async", timestamp: time.Now()})
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for async event")
	}
}

func TestEventBus_RetriesThenFails(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	var calls int32
	bus.Subscribe("flaky", func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("nope")
	})
	err := bus.Publish(context.Background(), NewBasicEvent("flaky", nil))
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestEventBus_Cancel(t *testing.T) {
	bus := NewEventBus(nil)
	var a, b int32
	idA := bus.Subscribe(EventTypeMedicineChanged, func(ctx context.Context, event Event) error {
		atomic.AddInt32(&a, 1)
		return nil
	})
	bus.Subscribe(EventTypeMedicineChanged, func(ctx context.Context, event Event) error {
		atomic.AddInt32(&b, 1)
		return nil
	})
	bus.Cancel(idA)
	assert.Equal(t, 1, bus.GetSubscriberCount(EventTypeMedicineChanged))

	require.NoError(t, bus.Publish(context.Background(), NewBasicEvent(EventTypeMedicineChanged, nil)))
	assert.Equal(t, int32(0), atomic.LoadInt32(&a))
	assert.Equal(t, int32(1), atomic.LoadInt32(&b))
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(nil)
	bus.Subscribe("ev", func(ctx context.Context, event Event) error { return nil })
	assert.Equal(t, 1, bus.GetSubscriberCount("ev"))
	bus.Unsubscribe("ev")
	assert.Equal(t, 0, bus.GetSubscriberCount("ev"))
}

func TestEventBus_GetEventTypes(t *testing.T) {
	bus := NewEventBus(nil)
	bus.Subscribe("a", func(ctx context.Context, event Event) error { return nil })
	bus.Subscribe("b", func(ctx context.Context, event Event) error { return nil })
	types := bus.GetEventTypes()
	assert.Contains(t, types, "a")
	assert.Contains(t, types, "b")
}

func TestEventBus_PublishAndForget(t *testing.T) {
	bus := NewEventBus(nil)
	var wg sync.WaitGroup
	wg.Add(1)
	bus.Subscribe("forget", func(ctx context.Context, event Event) error {
		wg.Done()
		return nil
	})
	bus.PublishAndForget(context.Background(), &DummyEvent{typeStr: "forget", timestamp: time.Now()})
	wait := make(chan struct{})
	go func() {
		wg.Wait()
		close(wait)
	}()
	select {
	case <-wait:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for PublishAndForget")
	}
}
