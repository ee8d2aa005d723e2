// Package models defines the core domain models for CRM workflow automation
package models

import (
	"strings"
	"time"
)

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft    WorkflowStatus = "draft"    // Being edited, never run
	WorkflowStatusActive   WorkflowStatus = "active"   // Running on its trigger
	WorkflowStatusArchived WorkflowStatus = "archived" // Kept for history only
)

// LocalIDPrefix marks workflows that only exist in the client cache.
const LocalIDPrefix = "local-"

// MaxDescriptionLength is the longest description a workflow may carry, in characters.
const MaxDescriptionLength = 500

var epoch = time.Unix(0, 0).UTC()

// timestampLayouts are tried in order when coercing UpdatedAt.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Workflow represents a named, ordered automation: one trigger followed by action steps.
// An empty ID denotes a workflow that has not been persisted yet.
type Workflow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"                validate:"required"`
	Description string          `json:"description"         validate:"max=500"`
	Status      WorkflowStatus  `json:"status"              validate:"omitempty,oneof=draft active archived"`
	Trigger     *Trigger        `json:"trigger,omitempty"`
	Steps       []*WorkflowStep `json:"steps"               validate:"min=1"`
	CreatedAt   string          `json:"createdAt,omitempty"`
	UpdatedAt   string          `json:"updatedAt,omitempty"`
}

// IsLocal reports whether the workflow exists only in the client cache.
func (w *Workflow) IsLocal() bool {
	return strings.HasPrefix(w.ID, LocalIDPrefix)
}

// UpdatedTime coerces UpdatedAt into a time. Missing or unparsable values are the epoch.
func (w *Workflow) UpdatedTime() time.Time {
	return ParseTimestamp(w.UpdatedAt)
}

// Normalize re-derives every step position from its index.
func (w *Workflow) Normalize() {
	for i, step := range w.Steps {
		step.Position = i
	}
}

// Clone returns a deep copy of the workflow.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}

	clone := *w

	if w.Trigger != nil {
		clone.Trigger = w.Trigger.Clone()
	}

	if w.Steps != nil {
		clone.Steps = make([]*WorkflowStep, len(w.Steps))
		for i, step := range w.Steps {
			clone.Steps[i] = step.Clone()
		}
	}

	return &clone
}

// ParseTimestamp coerces a timestamp string into a time, falling back to the epoch.
func ParseTimestamp(value string) time.Time {
	if value == "" {
		return epoch
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}

	return epoch
}

// FormatTimestamp renders a time the way workflows store UpdatedAt.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// CloneWorkflows deep-copies a collection.
func CloneWorkflows(workflows []*Workflow) []*Workflow {
	clones := make([]*Workflow, 0, len(workflows))
	for _, workflow := range workflows {
		clones = append(clones, workflow.Clone())
	}

	return clones
}
