// Package eventbus publishes and consumes workflow events over watermill.
package eventbus

import (
	"context"

	"github.com/dukex/flowdesk/pkg/events"
)

// Event is any payload from pkg/events. Its type selects the handler on the consuming side.
type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	// Publish sends event with key, the workflow id, carried in the message metadata.
	Publish(ctx context.Context, key string, event Event) error
}

// EventHandler receives a pointer to the decoded event. Returning an error redelivers it.
type EventHandler func(ctx context.Context, event any) error

type EventSubscriber interface {
	// Handle registers the handler for one event type, replacing any earlier one.
	// Handlers must be registered before Subscribe.
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
