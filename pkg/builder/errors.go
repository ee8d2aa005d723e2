package builder

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrValidation is returned by Save when the workflow has field errors.
	ErrValidation = errors.New("workflow is invalid")
	// ErrAuthExpired is returned by Save when there is no valid session.
	ErrAuthExpired = errors.New("session expired")
	// ErrStepNotFound is returned for step ids the builder does not hold.
	ErrStepNotFound = errors.New("step not found")
	// ErrIndexOutOfRange is returned by MoveStep for indexes outside the step list.
	ErrIndexOutOfRange = errors.New("step index out of range")
	// ErrBusy is returned when a mutation or save is attempted while a save is in flight.
	ErrBusy = errors.New("save in progress")
)

// FieldErrors maps a workflow field (by its JSON name) to a message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := slices.Sorted(maps.Keys(e))

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, fmt.Sprintf("%s: %s", field, e[field]))
	}

	return strings.Join(messages, "; ")
}

// Has reports whether field carries an error.
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]

	return ok
}
