package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUserNotFound names a share target that does not exist. It matches
	// ErrNotFound.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
)

// ValidationError reports malformed input. It is always returned before any
// state is mutated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StoreFailure wraps an error from the relational or blob store. Operations
// that return it have left no partial state behind.
type StoreFailure struct {
	Op  string
	Err error
}

func (e *StoreFailure) Error() string {
	return fmt.Sprintf("%s: store failure: %v", e.Op, e.Err)
}

func (e *StoreFailure) Unwrap() error {
	return e.Err
}

func storeFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	var failure *StoreFailure
	var validation *ValidationError
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPermissionDenied) ||
		errors.As(err, &failure) || errors.As(err, &validation) {
		return err
	}
	return &StoreFailure{Op: op, Err: err}
}
