package storage

import (
	"errors"
	"fmt"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
)

var (
	// ErrPoolExhausted is returned when no connection became available within
	// the acquire timeout. Callers may retry.
	ErrPoolExhausted = errors.New("connection pool exhausted")

	// ErrNotFound is returned when an event does not exist or is hidden by a
	// soft delete.
	ErrNotFound = errors.New("event not found")

	// ErrNotSupported is returned for operations the backend refuses.
	ErrNotSupported = errors.New("operation not supported")
)

// StorageError wraps a driver or transaction failure with the operation that
// caused it.
type StorageError struct {
	Op      string
	EventID *v1.EventID
	Err     error
}

func (e *StorageError) Error() string {
	if e.EventID != nil {
		return fmt.Sprintf("%s event %s: %v", e.Op, e.EventID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Wrap returns nil for a nil err, otherwise a *StorageError.
func Wrap(op string, id *v1.EventID, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, EventID: id, Err: err}
}
