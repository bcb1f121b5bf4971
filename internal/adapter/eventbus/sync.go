// Package eventbus provides implementations of the EventBus interface.
// This package contains the synchronous event bus implementation.
package eventbus

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

// SyncEventBus is a synchronous implementation of the EventBus interface.
// Events are delivered to handlers synchronously in the order they were subscribed.
//
// The analysis tick asks HasSubscribers and publishes on every frame, so the
// subscriber table is an immutable snapshot swapped atomically on each change:
// Publish and HasSubscribers never take a lock. Subscribe and Unsubscribe are
// serialized by mu.
//
// Thread-safety: This implementation is thread-safe. Handlers run on the
// publishing goroutine; slow handlers stall the analysis tick.
type SyncEventBus struct {
	// Dependencies
	logger atomic.Pointer[slog.Logger]

	table atomic.Pointer[subscriberTable]
	mu    sync.Mutex

	idCounter atomic.Uint64
	closed    atomic.Bool

	statsMu   sync.Mutex
	published map[domain.EventType]uint64
	panics    uint64
}

// subscriberTable is never modified after it is published.
type subscriberTable struct {
	byType map[domain.EventType][]subscription
	all    []subscription
}

type subscription struct {
	id      domain.SubscriptionID
	handler domain.EventHandler
}

// Stats are delivery counters for the diagnostics overlay.
type Stats struct {
	Published map[domain.EventType]uint64
	Panics    uint64
}

// NewSyncEventBus creates a new synchronous event bus.
func NewSyncEventBus() *SyncEventBus {
	bus := &SyncEventBus{published: make(map[domain.EventType]uint64)}
	bus.table.Store(&subscriberTable{byType: map[domain.EventType][]subscription{}})
	return bus
}

// SetLogger sets the logger for this event bus.
// This should be called after construction before using the event bus.
func (bus *SyncEventBus) SetLogger(logger *slog.Logger) {
	bus.logger.Store(logger)
}

// Publish delivers an event to the type's subscribers and then to the
// wildcard subscribers. A closed bus drops events.
//
// Panics in handlers are recovered and logged, but do not stop other handlers
// from being called.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil || bus.closed.Load() {
		return
	}

	t := bus.table.Load()
	for _, sub := range t.byType[event.Type()] {
		bus.callHandler(sub, event)
	}
	for _, sub := range t.all {
		bus.callHandler(sub, event)
	}

	bus.statsMu.Lock()
	bus.published[event.Type()]++
	bus.statsMu.Unlock()
}

func (bus *SyncEventBus) callHandler(sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			bus.statsMu.Lock()
			bus.panics++
			bus.statsMu.Unlock()
			if logger := bus.logger.Load(); logger != nil {
				logger.Error("event handler panicked",
					slog.Any("panic", r),
					slog.String("subscription", string(sub.id)),
					slog.String("event_type", string(event.Type())))
			}
		}
	}()
	sub.handler(event)
}

// Subscribe registers a handler for events of the specified type.
// Returns a unique subscription ID that can be used to unsubscribe.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}
	if bus.closed.Load() {
		panic("cannot subscribe to closed event bus")
	}

	id := domain.SubscriptionID(fmt.Sprintf("%s#%d", eventType, bus.idCounter.Add(1)))
	bus.update(func(t *subscriberTable) {
		t.byType[eventType] = append(t.byType[eventType], subscription{id: id, handler: handler})
	})
	return id
}

// SubscribeAll registers a handler that receives all events regardless of type.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}
	if bus.closed.Load() {
		panic("cannot subscribe to closed event bus")
	}

	id := domain.SubscriptionID(fmt.Sprintf("*#%d", bus.idCounter.Add(1)))
	bus.update(func(t *subscriberTable) {
		t.all = append(t.all, subscription{id: id, handler: handler})
	})
	return id
}

// Unsubscribe removes a previously registered event handler, keeping the
// delivery order of the remaining ones. Unknown IDs are ignored.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.update(func(t *subscriberTable) {
		for eventType, subs := range t.byType {
			if kept, ok := without(subs, id); ok {
				if len(kept) == 0 {
					delete(t.byType, eventType)
				} else {
					t.byType[eventType] = kept
				}
				return
			}
		}
		if kept, ok := without(t.all, id); ok {
			t.all = kept
		}
	})
}

// update copies the current table, applies fn and publishes the copy.
func (bus *SyncEventBus) update(fn func(t *subscriberTable)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	cur := bus.table.Load()
	next := &subscriberTable{
		byType: make(map[domain.EventType][]subscription, len(cur.byType)),
		all:    append([]subscription(nil), cur.all...),
	}
	for k, v := range cur.byType {
		next.byType[k] = append([]subscription(nil), v...)
	}
	fn(next)
	bus.table.Store(next)
}

func without(subs []subscription, id domain.SubscriptionID) ([]subscription, bool) {
	for i, sub := range subs {
		if sub.id == id {
			return append(subs[:i:i], subs[i+1:]...), true
		}
	}
	return subs, false
}

// HasSubscribers reports whether publishing eventType would reach any handler.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	t := bus.table.Load()
	return len(t.byType[eventType]) > 0 || len(t.all) > 0
}

// Close shuts down the event bus and clears all subscriptions.
//
// Returns an error if already closed.
func (bus *SyncEventBus) Close() error {
	if !bus.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("event bus already closed")
	}
	bus.mu.Lock()
	bus.table.Store(&subscriberTable{byType: map[domain.EventType][]subscription{}})
	bus.mu.Unlock()
	return nil
}

// SubscriberCount returns the number of active subscriptions.
func (bus *SyncEventBus) SubscriberCount() int {
	t := bus.table.Load()
	count := len(t.all)
	for _, subs := range t.byType {
		count += len(subs)
	}
	return count
}

// Stats returns a copy of the delivery counters.
func (bus *SyncEventBus) Stats() Stats {
	bus.statsMu.Lock()
	defer bus.statsMu.Unlock()

	published := make(map[domain.EventType]uint64, len(bus.published))
	for k, v := range bus.published {
		published[k] = v
	}
	return Stats{Published: published, Panics: bus.panics}
}

var _ ports.EventBus = (*SyncEventBus)(nil)
