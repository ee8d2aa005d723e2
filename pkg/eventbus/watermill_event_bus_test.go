package eventbus_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowdesk/pkg/channels/gochannel"
	"github.com/dukex/flowdesk/pkg/eventbus"
	"github.com/dukex/flowdesk/pkg/events"
)

func newBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pubSub := gochannel.New(watermill.NopLogger{})
	bus := eventbus.NewWatermillEventBus(pubSub, pubSub, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newBus(t)
	received := make(chan *events.WorkflowSaved, 1)

	require.NoError(t, bus.Handle(events.WorkflowSavedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.WorkflowSaved)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	published := events.WorkflowSaved{
		BaseEvent: events.NewBaseEvent(events.WorkflowSavedEvent, "wf-1"),
		Name:      "Welcome",
		Created:   true,
	}
	require.NoError(t, bus.Publish(ctx, "wf-1", published))

	select {
	case event := <-received:
		assert.Equal(t, "wf-1", event.WorkflowID)
		assert.Equal(t, "Welcome", event.Name)
		assert.True(t, event.Created)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_IgnoresUnhandledTypes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newBus(t)
	received := make(chan any, 2)

	require.NoError(t, bus.Handle(events.WorkflowDeletedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "wf-1", events.WorkflowSaved{BaseEvent: events.NewBaseEvent(events.WorkflowSavedEvent, "wf-1")}))
	require.NoError(t, bus.Publish(ctx, "wf-1", events.WorkflowDeleted{BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, "wf-1")}))

	select {
	case event := <-received:
		assert.IsType(t, &events.WorkflowDeleted{}, event)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}

	assert.Empty(t, received)
}

func TestWatermillEventBus_HandleReplacesHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newBus(t)
	received := make(chan string, 2)

	require.NoError(t, bus.Handle(events.WorkflowDeletedEvent, func(context.Context, any) error {
		received <- "first"

		return nil
	}))
	require.NoError(t, bus.Handle(events.WorkflowDeletedEvent, func(context.Context, any) error {
		received <- "second"

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "wf-1", events.WorkflowDeleted{BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, "wf-1")}))

	select {
	case handler := <-received:
		assert.Equal(t, "second", handler)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newBus(t)

	assert.NotEqual(t, bus.GenerateID(), bus.GenerateID())
}
