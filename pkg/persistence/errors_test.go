package persistence_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukex/flowdesk/pkg/persistence"
)

func TestWorkflowError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		notFound bool
	}{
		{"not found", persistence.NewWorkflowError("WorkflowByID", "wf-1", persistence.ErrWorkflowNotFound), true},
		{"wrapped not found", fmt.Errorf("handler: %w", persistence.NewWorkflowError("DeleteWorkflow", "wf-1", persistence.ErrWorkflowNotFound)), true},
		{"invalid id", persistence.NewWorkflowError("SaveWorkflow", "../x", persistence.ErrInvalidWorkflowID), false},
		{"plain error", fmt.Errorf("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, persistence.IsWorkflowNotFound(tt.err))
		})
	}
}

func TestWorkflowError_Message(t *testing.T) {
	t.Parallel()

	err := persistence.NewWorkflowError("SaveWorkflow", "../x", persistence.ErrInvalidWorkflowID)

	assert.Equal(t, `SaveWorkflow "../x": invalid workflow id`, err.Error())
	assert.ErrorIs(t, err, persistence.ErrInvalidWorkflowID)
}
