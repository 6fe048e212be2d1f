// Package apperr defines the closed error taxonomy shared by all services.
//
// Handlers translate these to HTTP statuses; services never import transport
// packages. Wrap with the *f constructors so callers can test with errors.Is
// while still seeing the specific detail.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: the tenant-scoped entity does not exist (or is not in a
	// state the operation accepts, e.g. confirming a non-proposed match).
	ErrNotFound = errors.New("not found")

	// ErrConflict: a natural-key duplicate or an idempotency-key payload
	// mismatch. The caller must change the input or the key.
	ErrConflict = errors.New("conflict")

	// ErrValidation: the input is rejected before any persistence attempt.
	ErrValidation = errors.New("validation failed")

	// ErrPersistence: the storage layer failed mid-operation; any partial
	// writes were rolled back.
	ErrPersistence = errors.New("persistence failure")
)

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrNotFound, args)...)
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrConflict, args)...)
}

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrValidation, args)...)
}

func Persistencef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrPersistence, args)...)
}

func prepend(err error, args []any) []any {
	return append([]any{err}, args...)
}
