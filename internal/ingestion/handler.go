package ingestion

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
	httperr "github.com/aevon-lab/relaystore/internal/core/errors"
	"github.com/aevon-lab/relaystore/internal/core/storage"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
)

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// DeleteRequest is the body of POST /v1/events/delete.
type DeleteRequest struct {
	Filters []v1.Filter `json:"filters"`
}

// IngestHandler handles HTTP POST requests for event ingestion.
func (s *Service) IngestHandler(c *gin.Context) {
	var evt v1.Event
	payloadSize, err := s.bindBody(c, &evt)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := evt.Validate(); err != nil {
		slog.Warn("Envelope validation failed", "error", err, "event_id", evt.ID)
		writeError(c, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidEventError,
			message:    err.Error(),
		})
		return
	}

	slog.Info("Received Event",
		"event_id", evt.ID,
		"pubkey", evt.PubKey,
		"kind", evt.Kind,
		"tags", len(evt.Tags),
		"payload_size", payloadSize)

	status, err := s.persistEvent(c.Request.Context(), &evt)
	if err != nil {
		writeError(c, err)
		return
	}

	if status == storage.AlreadyExists {
		c.JSON(http.StatusOK, gin.H{"status": status.String(), "id": evt.ID})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": status.String(), "id": evt.ID})
}

// DeleteHandler soft-deletes every event matching the posted filters.
func (s *Service) DeleteHandler(c *gin.Context) {
	var req DeleteRequest
	if _, err := s.bindBody(c, &req); err != nil {
		writeError(c, err)
		return
	}

	if len(req.Filters) == 0 {
		// No filters match nothing.
		c.JSON(http.StatusOK, gin.H{"deleted": 0})
		return
	}
	for i := range req.Filters {
		if err := req.Filters[i].Validate(); err != nil {
			writeError(c, &ingestionError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpInvalidFilterError,
				message:    err.Error(),
				details:    map[string]interface{}{"filter": i},
			})
			return
		}
	}

	deleted, err := s.store.DeleteEvents(c.Request.Context(), req.Filters)
	if err != nil {
		slog.Error("Failed to delete events", "error", err, "filters", len(req.Filters))
		writeStoreError(c, err)
		return
	}

	slog.Info("Deleted events", "filters", len(req.Filters), "deleted", deleted)
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// bindBody reads the size-limited request body and binds it as JSON into dst.
// Returns the raw payload size (used for structured logging upstream).
func (s *Service) bindBody(c *gin.Context, dst interface{}) (int, *ingestionError) {
	// Enforce maximum body size to prevent OOM attacks
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return 0, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	// Check if body exceeds maximum size
	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return len(bodyBytes), &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	if err := c.ShouldBindJSON(dst); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return len(bodyBytes), &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}

	return len(bodyBytes), nil
}

// persistEvent saves the event to the backing store.
func (s *Service) persistEvent(ctx context.Context, evt *v1.Event) (storage.SaveStatus, *ingestionError) {
	status, err := s.store.SaveEvent(ctx, evt)
	if err != nil {
		slog.Error("Failed to persist event", "error", err, "event_id", evt.ID)
		code, resp := httperr.FromStoreError(err)
		return 0, &ingestionError{
			statusCode: code,
			errorType:  resp.ErrorType,
			message:    resp.Message,
		}
	}

	if status == storage.AlreadyExists {
		slog.Info("Duplicate event ignored", "event_id", evt.ID)
	}
	return status, nil
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}

func writeStoreError(c *gin.Context, err error) {
	code, resp := httperr.FromStoreError(err)
	c.JSON(code, resp)
}
