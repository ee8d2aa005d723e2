// Package services holds the server-side workflow, analytics and collaboration logic.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/flowdesk/pkg/models"
)

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidWorkflow  = errors.New("invalid workflow")
	ErrInvalidTimeRange = models.ErrInvalidTimeRange
	ErrWorkflowNil      = errors.New("workflow cannot be nil")
)

// ServiceError is a request the service refused to act on. Code is a stable
// machine-readable reason, e.g. INVALID_TIME_RANGE.
type ServiceError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{Op: op, Code: code, Message: message, Err: err}
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err was caused by the caller's input.
func IsValidationError(err error) bool {
	var serviceErr *ServiceError

	return errors.As(err, &serviceErr) || errors.Is(err, ErrWorkflowNil)
}
