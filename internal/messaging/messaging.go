// Package messaging defines the broker-agnostic publish/subscribe contract
// used for domain events.
package messaging

import (
	"context"
	"fmt"
)

// Topics carrying domain events.
const (
	TopicCartEvents   = "cart.events"
	TopicOrdersPlaced = "orders.placed"
)

// EventTypeHeader names the message header holding the event type.
const EventTypeHeader = "event_type"

// Message is a received event.
type Message struct {
	Topic   string
	Key     string
	Type    string
	Payload []byte
}

// Handler processes one message. A returned error is logged by the
// subscriber and the message is not redelivered.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}

// Subscriber defines an interface for subscribing to a message topic.
// Consume blocks until ctx is cancelled.
type Subscriber interface {
	Consume(ctx context.Context, topic string, groupID string, handler Handler) error
}

// EventType returns the name carried in the event_type header.
func EventType(event any) string {
	if e, ok := event.(interface{ EventType() string }); ok {
		return e.EventType()
	}
	return fmt.Sprintf("%T", event)
}
