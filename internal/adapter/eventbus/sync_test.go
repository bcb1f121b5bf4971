package eventbus

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

// TestNewSyncEventBus tests event bus creation.
func TestNewSyncEventBus(t *testing.T) {
	bus := NewSyncEventBus()

	if bus == nil {
		t.Fatal("NewSyncEventBus returned nil")
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", bus.SubscriberCount())
	}
	if bus.closed.Load() {
		t.Error("New event bus should not be closed")
	}
}

// TestPublishSubscribe tests basic publish/subscribe functionality.
func TestPublishSubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var received domain.Event
	var callCount int

	subID := bus.Subscribe(domain.EventPeakMoved, func(event domain.Event) {
		received = event
		callCount++
	})
	if subID == "" {
		t.Fatal("Subscribe returned empty subscription ID")
	}
	if !strings.HasPrefix(string(subID), string(domain.EventPeakMoved)) {
		t.Errorf("Expected subscription ID to name the event type, got %s", subID)
	}

	peak := domain.PeakEstimate{FrequencyHz: 440, AmplitudeDb: -6}
	bus.Publish(domain.NewPeakMovedEvent(domain.GraphMain, peak))

	if callCount != 1 {
		t.Errorf("Expected handler to be called once, got %d", callCount)
	}
	if received == nil {
		t.Fatal("Handler did not receive event")
	}

	e := received.(domain.PeakMovedEvent)
	if e.Graph != domain.GraphMain || e.Peak.FrequencyHz != 440 {
		t.Errorf("Unexpected event payload: %+v", e)
	}
}

// TestMultipleSubscribersInOrder tests delivery order for one event type.
func TestMultipleSubscribersInOrder(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		bus.Subscribe(domain.EventFreezeToggled, func(domain.Event) {
			order = append(order, i)
		})
	}

	bus.Publish(domain.NewFreezeToggledEvent(true))

	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("Expected delivery order [0 1 2], got %v", order)
	}
}

// TestUnsubscribe tests removing a subscription while keeping the order of the rest.
func TestUnsubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var order []string
	bus.Subscribe(domain.EventOverrun, func(domain.Event) { order = append(order, "a") })
	id := bus.Subscribe(domain.EventOverrun, func(domain.Event) { order = append(order, "b") })
	bus.Subscribe(domain.EventOverrun, func(domain.Event) { order = append(order, "c") })

	bus.Unsubscribe(id)
	bus.Publish(domain.NewOverrunEvent(12))

	if strings.Join(order, "") != "ac" {
		t.Errorf("Expected [a c], got %v", order)
	}
	if bus.SubscriberCount() != 2 {
		t.Errorf("Expected 2 subscribers, got %d", bus.SubscriberCount())
	}
}

// TestUnsubscribeInvalidID tests that unknown IDs are ignored.
func TestUnsubscribeInvalidID(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	bus.Subscribe(domain.EventOverrun, func(domain.Event) {})
	bus.Unsubscribe("missing#1")

	if bus.SubscriberCount() != 1 {
		t.Errorf("Expected 1 subscriber, got %d", bus.SubscriberCount())
	}
}

// TestSubscribeAll tests wildcard subscriptions.
func TestSubscribeAll(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var types []domain.EventType
	id := bus.SubscribeAll(func(event domain.Event) {
		types = append(types, event.Type())
	})

	bus.Publish(domain.NewFreezeToggledEvent(false))
	bus.Publish(domain.NewStreamResetEvent(domain.StreamInfo{SampleRate: 48000, Channels: 2}))

	if len(types) != 2 || types[0] != domain.EventFreezeToggled || types[1] != domain.EventStreamReset {
		t.Errorf("Unexpected wildcard deliveries: %v", types)
	}

	bus.Unsubscribe(id)
	bus.Publish(domain.NewOverrunEvent(1))
	if len(types) != 2 {
		t.Error("Wildcard handler called after unsubscribe")
	}
}

// TestHasSubscribers tests subscriber detection with and without wildcards.
func TestHasSubscribers(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	if bus.HasSubscribers(domain.EventPeakMoved) {
		t.Error("Expected no subscribers")
	}

	id := bus.Subscribe(domain.EventPeakMoved, func(domain.Event) {})
	if !bus.HasSubscribers(domain.EventPeakMoved) {
		t.Error("Expected subscribers for peak.moved")
	}
	if bus.HasSubscribers(domain.EventOverrun) {
		t.Error("Expected no subscribers for stream.overrun")
	}

	bus.Unsubscribe(id)
	if bus.HasSubscribers(domain.EventPeakMoved) {
		t.Error("Expected no subscribers after unsubscribe")
	}

	bus.SubscribeAll(func(domain.Event) {})
	if !bus.HasSubscribers(domain.EventOverrun) {
		t.Error("Wildcard subscriber should count for every type")
	}
}

// TestHandlerPanic tests that a panicking handler does not stop delivery.
func TestHandlerPanic(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	called := false
	bus.Subscribe(domain.EventFreezeToggled, func(domain.Event) { panic("boom") })
	bus.Subscribe(domain.EventFreezeToggled, func(domain.Event) { called = true })

	bus.Publish(domain.NewFreezeToggledEvent(true))

	if !called {
		t.Error("Second handler should run after the first panicked")
	}
	if stats := bus.Stats(); stats.Panics != 1 {
		t.Errorf("Expected 1 recorded panic, got %d", stats.Panics)
	}
}

// TestStats tests the per-type publish counters.
func TestStats(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	bus.Publish(domain.NewOverrunEvent(1))
	bus.Publish(domain.NewOverrunEvent(2))
	bus.Publish(domain.NewFreezeToggledEvent(true))

	stats := bus.Stats()
	if stats.Published[domain.EventOverrun] != 2 {
		t.Errorf("Expected 2 overrun events, got %d", stats.Published[domain.EventOverrun])
	}
	if stats.Published[domain.EventFreezeToggled] != 1 {
		t.Errorf("Expected 1 freeze event, got %d", stats.Published[domain.EventFreezeToggled])
	}

	// the returned map is a copy
	stats.Published[domain.EventOverrun] = 100
	if bus.Stats().Published[domain.EventOverrun] != 2 {
		t.Error("Stats should return a copy")
	}
}

// TestClose tests closing behaviour.
func TestClose(t *testing.T) {
	bus := NewSyncEventBus()

	called := false
	bus.Subscribe(domain.EventOverrun, func(domain.Event) { called = true })

	if err := bus.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := bus.Close(); err == nil {
		t.Error("Expected error closing twice")
	}

	bus.Publish(domain.NewOverrunEvent(1))
	if called {
		t.Error("Closed bus should not deliver events")
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers after Close, got %d", bus.SubscriberCount())
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic subscribing to a closed bus")
		}
	}()
	bus.Subscribe(domain.EventOverrun, func(domain.Event) {})
}

// TestConcurrentPublishAndSubscribe tests the bus under concurrent use.
func TestConcurrentPublishAndSubscribe(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	var delivered atomic.Int64
	bus.Subscribe(domain.EventPeakMoved, func(domain.Event) { delivered.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				bus.Publish(domain.NewPeakMovedEvent(domain.GraphMain, domain.PeakEstimate{}))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := bus.Subscribe(domain.EventOverrun, func(domain.Event) {})
				_ = bus.HasSubscribers(domain.EventOverrun)
				bus.Unsubscribe(id)
			}
		}()
	}
	wg.Wait()

	if got := delivered.Load(); got != 8*200 {
		t.Errorf("Expected %d deliveries, got %d", 8*200, got)
	}
	if bus.SubscriberCount() != 1 {
		t.Errorf("Expected 1 subscriber, got %d", bus.SubscriberCount())
	}
}

// TestNilEvent tests that nil events are ignored.
func TestNilEvent(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	called := false
	bus.SubscribeAll(func(domain.Event) { called = true })
	bus.Publish(nil)

	if called {
		t.Error("Handler should not be called for nil event")
	}
}

// TestNilHandler tests that nil handlers are rejected.
func TestNilHandler(t *testing.T) {
	bus := NewSyncEventBus()
	defer bus.Close()

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for nil handler")
		}
	}()
	bus.Subscribe(domain.EventOverrun, nil)
}
