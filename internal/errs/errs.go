// Package errs contains sentinel errors shared by the storage backends and services.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates a missing or invalid field, or a broken reference.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a uniqueness violation on insert.
	ErrConflict = errors.New("conflict")

	// ErrNotFound indicates the lookup yielded no record.
	ErrNotFound = errors.New("not found")

	// ErrAuthentication indicates a credential mismatch.
	ErrAuthentication = errors.New("invalid credentials")

	// ErrUnsupportedOperation indicates an operation the active backend has no mapping for.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrBackendUnavailable indicates storage was used before initialization or is absent.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrIO indicates a failure of the underlying storage.
	ErrIO = errors.New("storage i/o failure")
)

// ValidationError describes which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes ValidationError match ErrValidation.
func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid is shorthand for a ValidationError.
func Invalid(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

// IO wraps a storage failure so it matches ErrIO while keeping the cause.
func IO(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrIO, err)
}
