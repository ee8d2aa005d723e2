package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dukex/flowdesk/pkg/eventbus"
	"github.com/dukex/flowdesk/pkg/events"
	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/persistence"
)

// ActivityRecorder turns workflow events into activity feed entries.
type ActivityRecorder struct {
	persistence persistence.Persistence
	logger      *slog.Logger
}

func NewActivityRecorder(persistence persistence.Persistence, logger *slog.Logger) *ActivityRecorder {
	return &ActivityRecorder{
		persistence: persistence,
		logger:      logger.With("module", "activity_recorder"),
	}
}

// Register installs a handler for every workflow event type. Call it before Subscribe.
func (r *ActivityRecorder) Register(subscriber eventbus.EventSubscriber) error {
	for _, eventType := range []events.EventType{
		events.WorkflowSavedEvent,
		events.WorkflowDeletedEvent,
		events.WorkflowCommentAddedEvent,
		events.WorkflowExecutionRecordedEvent,
	} {
		err := subscriber.Handle(eventType, r.Record)
		if err != nil {
			return fmt.Errorf("failed to register %s handler: %w", eventType, err)
		}
	}

	return nil
}

// Record stores the activity entry describing one event.
func (r *ActivityRecorder) Record(ctx context.Context, event any) error {
	activity, ok := describe(event)
	if !ok {
		r.logger.WarnContext(ctx, "Ignoring event without activity", "event", fmt.Sprintf("%T", event))

		return nil
	}

	err := r.persistence.SaveActivity(ctx, activity)
	if err != nil {
		return fmt.Errorf("failed to save activity: %w", err)
	}

	r.logger.DebugContext(ctx, "Recorded activity", "workflow_id", activity.WorkflowID, "kind", activity.Kind)

	return nil
}

func describe(event any) (*models.Activity, bool) {
	var (
		base    events.BaseEvent
		message string
	)

	switch e := event.(type) {
	case *events.WorkflowSaved:
		base = e.BaseEvent
		message = fmt.Sprintf("Workflow %q updated", e.Name)

		if e.Created {
			message = fmt.Sprintf("Workflow %q created", e.Name)
		}
	case *events.WorkflowDeleted:
		base = e.BaseEvent
		message = fmt.Sprintf("Workflow %q deleted", e.Name)
	case *events.WorkflowCommentAdded:
		base = e.BaseEvent
		message = e.Author + " commented"
	case *events.WorkflowExecutionRecorded:
		base = e.BaseEvent
		message = fmt.Sprintf("Execution %s in %dms", e.Status, e.DurationMs)
	default:
		return nil, false
	}

	return &models.Activity{
		ID:         uuid.New().String(),
		WorkflowID: base.WorkflowID,
		Kind:       string(base.Type),
		Message:    message,
		CreatedAt:  base.Timestamp,
	}, true
}
