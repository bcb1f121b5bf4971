package ports

import (
	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

// EventBus carries state transitions out of the services: settings and freeze
// changes, stream resets and overruns, peak movement and source changes. The
// presenter is the main subscriber.
//
// Implementations must be safe for concurrent use; the analyzer publishes from
// the tick goroutine while the UI subscribes from its own.
//
//	id := bus.Subscribe(domain.EventPeakMoved, func(event domain.Event) {
//		e := event.(domain.PeakMovedEvent)
//		logger.Info("peak moved", slog.Float64("hz", e.Peak.FrequencyHz))
//	})
//	defer bus.Unsubscribe(id)
type EventBus interface {
	// Publish delivers event to the subscribers of its type and to the
	// catch-all subscribers. Handlers run on the publishing goroutine and must
	// return quickly.
	Publish(event domain.Event)

	// Subscribe registers handler for eventType. Registering the same handler
	// twice delivers events to it twice.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a subscription. Unknown IDs are ignored.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers handler for every event type.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers lets publishers skip building events nobody listens to.
	HasSubscribers(eventType domain.EventType) bool

	// Close drops every subscription. A second Close returns an error.
	Close() error
}
