package persistence

import (
	"errors"
	"fmt"
)

var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	// ErrInvalidWorkflowID is returned for ids that cannot be used as a storage key.
	ErrInvalidWorkflowID = errors.New("invalid workflow id")
)

// WorkflowError ties a storage failure to the workflow and backend call it came from.
type WorkflowError struct {
	Op         string
	WorkflowID string
	Err        error
}

func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{Op: op, WorkflowID: workflowID, Err: err}
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// IsWorkflowNotFound reports whether err, at any depth, means the workflow does not exist.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}
