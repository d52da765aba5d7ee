package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the kind shared by all field-level validation
	// failures.
	ErrValidation = errors.New("invalid task")

	// ErrRecurrenceWithoutDue marks the one cross-field rule: a
	// recurrence requires a due date. It is still a validation error.
	ErrRecurrenceWithoutDue = fmt.Errorf("%w: recurrence requires a due date", ErrValidation)

	// ErrNotFound marks lookups of an absent task id.
	ErrNotFound = errors.New("task not found")
)

// ValidationError reports the first violated rule for a task build or
// update, with the field that triggered it.
type ValidationError struct {
	Field string
	Msg   string
	kind  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	if e.kind != nil {
		return e.kind
	}
	return ErrValidation
}

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

func recurrenceWithoutDue() error {
	return &ValidationError{
		Field: "recurrence",
		Msg:   "a recurring task requires a due date",
		kind:  ErrRecurrenceWithoutDue,
	}
}

// NotFoundError identifies the missing task id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %d not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
