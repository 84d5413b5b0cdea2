package pubsub

import "context"

// Event is the structure passed between components on the bus. The chat core
// routes messages through the repository; the bus only carries observational
// lifecycle events for consumers such as the stats collector.
type Event struct {
	// Topic identifies the bus channel the event belongs to (e.g. "chat.user.joined").
	Topic string
	// Payload contains the JSON-encoded event body.
	Payload []byte
	// Metadata can carry arbitrary key-value pairs for context.
	Metadata map[string]string
}

// Handler defines the function signature for processing a received event.
type Handler func(ctx context.Context, evt Event) error

// Publisher defines the contract for emitting events onto the bus.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Subscriber defines the contract for consuming events from the bus.
type Subscriber interface {
	// Subscribe starts listening to the given topic, processing events with
	// the handler. It returns once the subscription is active; delivery
	// happens on a background goroutine until the context is cancelled.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
