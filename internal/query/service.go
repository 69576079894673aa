package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
	"github.com/aevon-lab/relaystore/internal/core/storage"
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid event query")

// Service implements the read side over an EventStore.
type Service struct {
	store storage.EventStore
}

// NewService creates a new query service.
func NewService(store storage.EventStore) *Service {
	if store == nil {
		panic("query: store must not be nil")
	}
	return &Service{store: store}
}

// Query returns the events matching any of the request filters.
func (s *Service) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if len(req.Filters) == 0 {
		// No filters match nothing.
		return &QueryResponse{Events: []*v1.Event{}}, nil
	}

	events, err := s.store.QueryEvents(ctx, req.Filters, req.Limit)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []*v1.Event{}
	}

	slog.Debug("[Query] Served query", "filters", len(req.Filters), "limit", req.Limit, "matched", len(events))
	return &QueryResponse{Events: events, Count: len(events)}, nil
}

// Count returns the number of distinct events matching any of the request filters.
func (s *Service) Count(ctx context.Context, req QueryRequest) (*CountResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if len(req.Filters) == 0 {
		return &CountResponse{}, nil
	}

	n, err := s.store.CountEvents(ctx, req.Filters)
	if err != nil {
		return nil, err
	}
	return &CountResponse{Count: n}, nil
}

// Event fetches one event by id.
func (s *Service) Event(ctx context.Context, id v1.EventID, includeDeleted bool) (*v1.Event, error) {
	return s.store.EventByID(ctx, id, includeDeleted)
}

// Status reports whether id was never seen, is live, or was soft-deleted.
func (s *Service) Status(ctx context.Context, id v1.EventID) (*StatusResponse, error) {
	status, err := s.store.CheckID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StatusResponse{ID: id, Status: status.String()}, nil
}

func validateRequest(req QueryRequest) error {
	if req.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidQuery)
	}
	for i := range req.Filters {
		if err := req.Filters[i].Validate(); err != nil {
			return fmt.Errorf("%w: filter %d: %v", ErrInvalidQuery, i, err)
		}
	}
	return nil
}
