package errors

import (
	"context"
	"errors"
	"net/http"

	"github.com/aevon-lab/relaystore/internal/core/codec"
	"github.com/aevon-lab/relaystore/internal/core/storage"
)

const (
	HttpInternalError       = "internal_error"
	HttpInvalidJsonError    = "invalid_json"
	HttpInvalidEventError   = "invalid_event"
	HttpInvalidFilterError  = "invalid_filter"
	HttpNotFoundError       = "not_found"
	HttpPoolExhaustedError  = "pool_exhausted"
	HttpCorruptPayloadError = "corrupt_payload"
	HttpTimeoutError        = "timeout"
)

// ErrorResponse is the error response body for API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// FromStoreError maps an EventStore error to an HTTP status and error type.
func FromStoreError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{ErrorType: HttpNotFoundError, Message: "Event not found"}
	case errors.Is(err, storage.ErrPoolExhausted):
		return http.StatusServiceUnavailable, ErrorResponse{ErrorType: HttpPoolExhaustedError, Message: "Storage is busy, retry later"}
	case errors.Is(err, codec.ErrEncoding):
		return http.StatusBadRequest, ErrorResponse{ErrorType: HttpInvalidEventError, Message: err.Error()}
	case errors.Is(err, codec.ErrDecoding):
		return http.StatusInternalServerError, ErrorResponse{ErrorType: HttpCorruptPayloadError, Message: "Stored event could not be decoded"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{ErrorType: HttpTimeoutError, Message: "Request timed out"}
	default:
		var se *storage.StorageError
		if errors.As(err, &se) {
			return http.StatusInternalServerError, ErrorResponse{ErrorType: HttpInternalError, Message: "Storage failure during " + se.Op}
		}
		// Filter compilation errors are the only untyped errors the store returns.
		return http.StatusBadRequest, ErrorResponse{ErrorType: HttpInvalidFilterError, Message: err.Error()}
	}
}
