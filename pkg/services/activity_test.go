package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowdesk/pkg/channels/gochannel"
	"github.com/dukex/flowdesk/pkg/eventbus"
	"github.com/dukex/flowdesk/pkg/events"
	"github.com/dukex/flowdesk/pkg/persistence/file"
)

func TestActivityRecorder_Record(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	recorder := NewActivityRecorder(store, testLogger())

	saved := events.WorkflowSaved{BaseEvent: events.NewBaseEvent(events.WorkflowSavedEvent, "wf-1"), Name: "Welcome", Created: true}
	require.NoError(t, recorder.Record(t.Context(), &saved))

	deleted := events.WorkflowDeleted{BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, "wf-1"), Name: "Welcome"}
	require.NoError(t, recorder.Record(t.Context(), &deleted))

	require.NoError(t, recorder.Record(t.Context(), "not an event"))

	activities, err := store.Activities(t.Context(), "wf-1")
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, string(events.WorkflowSavedEvent), activities[0].Kind)
	assert.Equal(t, `Workflow "Welcome" created`, activities[0].Message)
	assert.Equal(t, `Workflow "Welcome" deleted`, activities[1].Message)
}

func TestActivityRecorder_FromEventBus(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	pubSub := gochannel.New(watermill.NopLogger{})
	bus := eventbus.NewWatermillEventBus(pubSub, pubSub, testLogger())
	t.Cleanup(func() { _ = bus.Close() })

	workflows, store, _ := newWorkflowService(t)
	workflows.publisher = bus

	recorder := NewActivityRecorder(store, testLogger())
	require.NoError(t, recorder.Register(bus))
	require.NoError(t, bus.Subscribe(ctx))

	created, err := workflows.Create(ctx, newTestWorkflow())
	require.NoError(t, err)

	collaboration := NewCollaboration(store, nil, workflows.validate, testLogger())

	require.Eventually(t, func() bool {
		activities, err := collaboration.Activity(ctx, created.ID)

		return err == nil && len(activities) == 1
	}, 5*time.Second, 20*time.Millisecond)
}

type failingSubscriber struct{}

func (failingSubscriber) Handle(events.EventType, eventbus.EventHandler) error {
	return errors.New("closed")
}

func (failingSubscriber) Subscribe(context.Context) error { return nil }

func TestActivityRecorder_RegisterError(t *testing.T) {
	recorder := NewActivityRecorder(file.NewPersistence(t.TempDir()), testLogger())

	err := recorder.Register(failingSubscriber{})
	require.Error(t, err)
}
