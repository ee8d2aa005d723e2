package services

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowdesk/pkg/events"
	"github.com/dukex/flowdesk/pkg/models"
)

func TestAnalytics_RecordAndCompute(t *testing.T) {
	workflows, store, publisher := newWorkflowService(t)

	created, err := workflows.Create(t.Context(), newTestWorkflow())
	require.NoError(t, err)

	service := NewAnalytics(store, publisher, validator.New(validator.WithRequiredStructEnabled()), testLogger())
	service.now = func() time.Time { return fixedNow }

	for _, execution := range []*models.Execution{
		{Status: models.ExecutionStatusSuccess, DurationMs: 100, StartedAt: fixedNow.Add(-time.Hour)},
		{Status: models.ExecutionStatusFailed, DurationMs: 300, StartedAt: fixedNow.Add(-48 * time.Hour)},
		{Status: models.ExecutionStatusSuccess, DurationMs: 50, StartedAt: fixedNow.AddDate(0, 0, -20)},
	} {
		recorded, err := service.RecordExecution(t.Context(), created.ID, execution)
		require.NoError(t, err)
		assert.NotEmpty(t, recorded.ID)
		assert.Equal(t, created.ID, recorded.WorkflowID)
	}

	weekly, err := service.ForWorkflow(t.Context(), created.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.TimeRange7d, weekly.TimeRange)
	assert.Equal(t, 2, weekly.TotalExecutions)
	assert.Equal(t, 1, weekly.FailedExecutions)
	assert.InDelta(t, 50.0, weekly.SuccessRate, 0.001)
	assert.InDelta(t, 200.0, weekly.AvgExecutionTime, 0.001)

	global, err := service.Global(t.Context(), "30d")
	require.NoError(t, err)
	assert.Empty(t, global.WorkflowID)
	assert.Equal(t, 3, global.TotalExecutions)
	require.NotNil(t, global.LastExecutedAt)
	assert.True(t, global.LastExecutedAt.Equal(fixedNow.Add(-time.Hour)))

	types := publisher.types()
	assert.Equal(t, events.WorkflowExecutionRecordedEvent, types[len(types)-1])
}

func TestAnalytics_InvalidTimeRange(t *testing.T) {
	_, store, publisher := newWorkflowService(t)
	service := NewAnalytics(store, publisher, validator.New(), testLogger())

	_, err := service.Global(t.Context(), "1y")
	require.ErrorIs(t, err, ErrInvalidTimeRange)
	assert.True(t, IsValidationError(err))
}

func TestAnalytics_UnknownWorkflow(t *testing.T) {
	_, store, publisher := newWorkflowService(t)
	service := NewAnalytics(store, publisher, validator.New(), testLogger())

	_, err := service.ForWorkflow(t.Context(), "missing", "7d")
	require.ErrorIs(t, err, ErrWorkflowNotFound)

	_, err = service.RecordExecution(t.Context(), "missing", &models.Execution{Status: models.ExecutionStatusSuccess})
	require.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestAnalytics_RecordInvalidExecution(t *testing.T) {
	workflows, store, publisher := newWorkflowService(t)

	created, err := workflows.Create(t.Context(), newTestWorkflow())
	require.NoError(t, err)

	service := NewAnalytics(store, publisher, validator.New(), testLogger())

	_, err = service.RecordExecution(t.Context(), created.ID, &models.Execution{Status: "running"})
	require.ErrorIs(t, err, ErrInvalidRequest)
}
