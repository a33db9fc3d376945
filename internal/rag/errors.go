package rag

import (
	"errors"
	"fmt"
)

var (
	// ErrExternalService is returned when an external collaborator call fails.
	ErrExternalService = errors.New("external service error")
)

// ValidationError represents an input validation error with a field name.
// It is raised before any downstream call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapExternal wraps an error with context and marks it as an external
// collaborator failure, so callers can match on ErrExternalService.
func WrapExternal(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrExternalService, err)
}
