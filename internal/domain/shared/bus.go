package shared

import "context"

// Message is the bus envelope: key is the event id, value the serialized StoredEvent.
type Message struct {
	Key   string
	Value []byte
}

// MessageHandler processes one message. Returning an error signals the bus
// that delivery failed and the message should be redelivered (at-least-once).
type MessageHandler func(ctx context.Context, msg Message) error

// MessageBus decouples the write path from projection consumers.
// Delivery is at least once; consumers must tolerate redelivery.
type MessageBus interface {
	// Publish delivers a message to a topic.
	Publish(ctx context.Context, topic string, msg Message) error
	// Subscribe registers a handler for a topic within the consumer group.
	Subscribe(topic, group string, handler MessageHandler) error
	// Start begins delivering messages to subscribed handlers.
	Start(ctx context.Context) error
	// Stop gracefully stops delivery.
	Stop(ctx context.Context) error
}

// EventHandler handles decoded stored events on the projection side
type EventHandler interface {
	// Handle processes a stored event
	Handle(ctx context.Context, event *StoredEvent) error
	// EventTypes returns the event types this handler is interested in
	EventTypes() []string
}
