package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dukex/flowdesk/pkg/eventbus"
	"github.com/dukex/flowdesk/pkg/events"
	"github.com/dukex/flowdesk/pkg/models"
	"github.com/dukex/flowdesk/pkg/persistence"
)

// Analytics aggregates recorded executions into success rates and timings.
type Analytics struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	validate    *validator.Validate
	logger      *slog.Logger
	now         func() time.Time
}

func NewAnalytics(
	persistence persistence.Persistence,
	publisher eventbus.EventPublisher,
	validate *validator.Validate,
	logger *slog.Logger,
) *Analytics {
	return &Analytics{
		persistence: persistence,
		publisher:   publisher,
		validate:    validate,
		logger:      logger.With("module", "analytics_service"),
		now:         time.Now,
	}
}

// Global aggregates the executions of every workflow.
func (a *Analytics) Global(ctx context.Context, timeRange string) (*models.Analytics, error) {
	return a.compute(ctx, "Global", "", timeRange)
}

// ForWorkflow aggregates the executions of one existing workflow.
func (a *Analytics) ForWorkflow(ctx context.Context, workflowID, timeRange string) (*models.Analytics, error) {
	_, err := a.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	return a.compute(ctx, "ForWorkflow", workflowID, timeRange)
}

func (a *Analytics) compute(ctx context.Context, op, workflowID, value string) (*models.Analytics, error) {
	timeRange, err := models.ParseTimeRange(value)
	if err != nil {
		return nil, NewValidationError(op, "INVALID_TIME_RANGE", err.Error(), ErrInvalidTimeRange)
	}

	executions, err := a.persistence.Executions(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load executions: %w", err)
	}

	return models.ComputeAnalytics(workflowID, executions, timeRange, a.now()), nil
}

// RecordExecution stores one run of a workflow. StartedAt defaults to now.
func (a *Analytics) RecordExecution(
	ctx context.Context,
	workflowID string,
	execution *models.Execution,
) (*models.Execution, error) {
	if execution == nil {
		return nil, NewValidationError("RecordExecution", "INVALID_REQUEST", "execution is required", ErrInvalidRequest)
	}

	_, err := a.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	err = a.validate.Struct(execution)
	if err != nil {
		return nil, NewValidationError("RecordExecution", "INVALID_REQUEST", err.Error(), ErrInvalidRequest)
	}

	execution.ID = uuid.New().String()
	execution.WorkflowID = workflowID

	if execution.StartedAt.IsZero() {
		execution.StartedAt = a.now().UTC()
	}

	err = a.persistence.SaveExecution(ctx, execution)
	if err != nil {
		return nil, fmt.Errorf("failed to save execution: %w", err)
	}

	publish(ctx, a.publisher, a.logger, workflowID, events.WorkflowExecutionRecorded{
		BaseEvent:   events.NewBaseEvent(events.WorkflowExecutionRecordedEvent, workflowID),
		ExecutionID: execution.ID,
		Status:      string(execution.Status),
		DurationMs:  execution.DurationMs,
	})

	return execution, nil
}
