package storage

import (
	"context"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
)

// SaveStatus is the outcome of a successful SaveEvent call.
type SaveStatus int

const (
	// Stored means the event and its tag rows were committed.
	Stored SaveStatus = iota + 1
	// AlreadyExists means an event with the same id was already present.
	// Nothing was written.
	AlreadyExists
)

func (s SaveStatus) String() string {
	switch s {
	case Stored:
		return "stored"
	case AlreadyExists:
		return "duplicate"
	default:
		return "unknown"
	}
}

// EventStatus reports what the store knows about an id.
type EventStatus int

const (
	StatusNotExistent EventStatus = iota
	StatusSaved
	StatusDeleted
)

func (s EventStatus) String() string {
	switch s {
	case StatusSaved:
		return "saved"
	case StatusDeleted:
		return "deleted"
	default:
		return "not_existent"
	}
}

// EventStore defines the interface for storing and retrieving events.
type EventStore interface {
	// SaveEvent writes the event and its tag rows atomically.
	// A duplicate id is reported as AlreadyExists, not as an error.
	SaveEvent(ctx context.Context, event *v1.Event) (SaveStatus, error)

	// DeleteEvents soft-deletes every visible event matching any filter and
	// returns the number of rows flipped. Repeating a delete returns 0.
	DeleteEvents(ctx context.Context, filters []v1.Filter) (int64, error)

	// EventByID returns ErrNotFound when the id is absent, or soft-deleted
	// and includeDeleted is false.
	EventByID(ctx context.Context, id v1.EventID, includeDeleted bool) (*v1.Event, error)

	CheckID(ctx context.Context, id v1.EventID) (EventStatus, error)

	// QueryEvents returns matching events ordered by created_at descending,
	// ties broken by id ascending. limit <= 0 selects the configured default.
	QueryEvents(ctx context.Context, filters []v1.Filter, limit int) ([]*v1.Event, error)

	CountEvents(ctx context.Context, filters []v1.Filter) (int64, error)
}
