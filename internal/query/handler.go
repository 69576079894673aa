package query

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
	httperr "github.com/aevon-lab/relaystore/internal/core/errors"
)

// RegisterRoutes registers all read API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/events/:id", s.HandleGetEvent)
	r.GET("/v1/events/:id/status", s.HandleEventStatus)
	r.POST("/v1/query", s.HandleQuery)
	r.POST("/v1/count", s.HandleCount)
}

// HandleGetEvent handles GET /v1/events/:id
// Query parameters: include_deleted
func (s *Service) HandleGetEvent(c *gin.Context) {
	id, ok := bindEventID(c)
	if !ok {
		return
	}
	var query struct {
		IncludeDeleted bool `form:"include_deleted"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	evt, err := s.Event(c.Request.Context(), id, query.IncludeDeleted)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, evt)
}

// HandleEventStatus handles GET /v1/events/:id/status
func (s *Service) HandleEventStatus(c *gin.Context) {
	id, ok := bindEventID(c)
	if !ok {
		return
	}

	resp, err := s.Status(c.Request.Context(), id)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleQuery handles POST /v1/query
func (s *Service) HandleQuery(c *gin.Context) {
	var req QueryRequest
	if !bindRequest(c, &req) {
		return
	}

	resp, err := s.Query(c.Request.Context(), req)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleCount handles POST /v1/count
func (s *Service) HandleCount(c *gin.Context) {
	var req QueryRequest
	if !bindRequest(c, &req) {
		return
	}

	resp, err := s.Count(c.Request.Context(), req)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func bindEventID(c *gin.Context) (v1.EventID, bool) {
	id, err := v1.ParseEventID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid path parameters",
			Details:   err.Error(),
		})
		return v1.EventID{}, false
	}
	return id, true
}

func bindRequest(c *gin.Context, req *QueryRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid JSON body",
			Details:   err.Error(),
		})
		return false
	}
	return true
}

func writeQueryError(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidQuery) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidFilterError,
			Message:   "Invalid event query",
			Details:   err.Error(),
		})
		return
	}
	writeStoreError(c, err)
}

func writeStoreError(c *gin.Context, err error) {
	code, resp := httperr.FromStoreError(err)
	if code >= http.StatusInternalServerError {
		slog.Error("[Query] Store failure", "path", c.FullPath(), "error", err)
	}
	c.JSON(code, resp)
}
