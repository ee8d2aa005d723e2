// Package events defines the workflow lifecycle notifications published by the service.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every workflow event.
const Topic = "flowdesk.workflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowSavedEvent             EventType = "workflow.saved"
	WorkflowDeletedEvent           EventType = "workflow.deleted"
	WorkflowCommentAddedEvent      EventType = "workflow.comment_added"
	WorkflowExecutionRecordedEvent EventType = "workflow.execution_recorded"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

// WorkflowSaved is published after a create, a full update or a patch.
type WorkflowSaved struct {
	BaseEvent

	Name    string `json:"name"`
	Created bool   `json:"created"`
}

func (WorkflowSaved) GetType() EventType {
	return WorkflowSavedEvent
}

type WorkflowDeleted struct {
	BaseEvent

	Name string `json:"name"`
}

func (WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

type WorkflowCommentAdded struct {
	BaseEvent

	CommentID string `json:"comment_id"`
	Author    string `json:"author"`
}

func (WorkflowCommentAdded) GetType() EventType {
	return WorkflowCommentAddedEvent
}

type WorkflowExecutionRecorded struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	Status      string `json:"status"`
	DurationMs  int64  `json:"duration_ms"`
}

func (WorkflowExecutionRecorded) GetType() EventType {
	return WorkflowExecutionRecordedEvent
}

// New returns an empty event value for a type, ready to be decoded into.
func New(eventType EventType) (any, bool) {
	switch eventType {
	case WorkflowSavedEvent:
		return &WorkflowSaved{}, true
	case WorkflowDeletedEvent:
		return &WorkflowDeleted{}, true
	case WorkflowCommentAddedEvent:
		return &WorkflowCommentAdded{}, true
	case WorkflowExecutionRecordedEvent:
		return &WorkflowExecutionRecorded{}, true
	default:
		return nil, false
	}
}
