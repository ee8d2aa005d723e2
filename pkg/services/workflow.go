package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dukex/flowdesk/pkg/eventbus"
	"github.com/dukex/flowdesk/pkg/events"
	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/persistence"
)

var (
	// ErrWorkflowNotFound is returned when a workflow is not found.
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
)

type Workflow struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	validate    *validator.Validate
	logger      *slog.Logger
	now         func() time.Time
}

// NewWorkflow creates a new workflow service. A nil publisher disables events.
func NewWorkflow(
	persistence persistence.Persistence,
	publisher eventbus.EventPublisher,
	validate *validator.Validate,
	logger *slog.Logger,
) *Workflow {
	return &Workflow{
		persistence: persistence,
		publisher:   publisher,
		validate:    validate,
		logger:      logger.With("module", "workflow_service"),
		now:         time.Now,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns every workflow, oldest first.
func (w *Workflow) List(ctx context.Context) ([]*models.Workflow, error) {
	workflows, err := w.persistence.Workflows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	return workflow, nil
}

// Create assigns a fresh id and timestamps, then stores the workflow.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	now := models.FormatTimestamp(w.now())
	workflow.ID = uuid.New().String()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusDraft
	}

	err := w.save(ctx, "Create", workflow)
	if err != nil {
		return nil, err
	}

	w.publish(ctx, workflow.ID, events.WorkflowSaved{
		BaseEvent: events.NewBaseEvent(events.WorkflowSavedEvent, workflow.ID),
		Name:      workflow.Name,
		Created:   true,
	})

	return workflow, nil
}

// Update replaces an existing workflow. The id and creation time are kept.
func (w *Workflow) Update(
	ctx context.Context,
	workflowID string,
	workflow *models.Workflow,
) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	existing, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	workflow.ID = workflowID
	workflow.CreatedAt = existing.CreatedAt
	workflow.UpdatedAt = models.FormatTimestamp(w.now())

	if workflow.Status == "" {
		workflow.Status = existing.Status
	}

	err = w.save(ctx, "Update", workflow)
	if err != nil {
		return nil, err
	}

	w.publish(ctx, workflow.ID, events.WorkflowSaved{
		BaseEvent: events.NewBaseEvent(events.WorkflowSavedEvent, workflow.ID),
		Name:      workflow.Name,
	})

	return workflow, nil
}

// Patch merges the non-empty fields of patch into an existing workflow.
// A non-empty step list replaces the stored one.
func (w *Workflow) Patch(ctx context.Context, workflowID string, patch *models.Workflow) (*models.Workflow, error) {
	if patch == nil {
		return nil, ErrWorkflowNil
	}

	existing, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	createdAt := existing.CreatedAt

	err = mergo.Merge(existing, patch, mergo.WithOverride)
	if err != nil {
		return nil, fmt.Errorf("failed to merge workflow %s: %w", workflowID, err)
	}

	existing.ID = workflowID
	existing.CreatedAt = createdAt
	existing.UpdatedAt = models.FormatTimestamp(w.now())

	err = w.save(ctx, "Patch", existing)
	if err != nil {
		return nil, err
	}

	w.publish(ctx, existing.ID, events.WorkflowSaved{
		BaseEvent: events.NewBaseEvent(events.WorkflowSavedEvent, existing.ID),
		Name:      existing.Name,
	})

	return existing, nil
}

// Delete removes a workflow by its ID.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	existing, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return err
	}

	err = w.persistence.DeleteWorkflow(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	w.publish(ctx, workflowID, events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, workflowID),
		Name:      existing.Name,
	})

	return nil
}

func (w *Workflow) save(ctx context.Context, op string, workflow *models.Workflow) error {
	workflow.Normalize()

	err := w.validate.Struct(workflow)
	if err != nil {
		return NewValidationError(op, "INVALID_WORKFLOW", err.Error(), ErrInvalidWorkflow)
	}

	err = w.persistence.SaveWorkflow(ctx, workflow)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	return nil
}

func (w *Workflow) publish(ctx context.Context, workflowID string, event eventbus.Event) {
	publish(ctx, w.publisher, w.logger, workflowID, event)
}

// publish sends an event keyed by workflow id. Failures are logged, never returned.
func publish(
	ctx context.Context,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
	workflowID string,
	event eventbus.Event,
) {
	if publisher == nil {
		return
	}

	err := publisher.Publish(ctx, workflowID, event)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
