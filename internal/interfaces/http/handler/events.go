package handler

import (
	"strconv"

	appledger "github.com/airp/ledger/internal/application/ledger"
	"github.com/airp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventsHandler serves read access to the event log
type EventsHandler struct {
	BaseHandler
	queries *appledger.EventQueryService
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(queries *appledger.EventQueryService) *EventsHandler {
	return &EventsHandler{queries: queries}
}

// ByAggregate handles GET /api/v1/events/aggregate/:id
func (h *EventsHandler) ByAggregate(c *gin.Context) {
	aggregateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "aggregate id must be a valid UUID")
		return
	}
	events, err := h.queries.ByAggregate(c.Request.Context(), middleware.GetTenantID(c), aggregateID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, events)
}

// ByType handles GET /api/v1/events/type/:type
func (h *EventsHandler) ByType(c *gin.Context) {
	events, err := h.queries.ByType(c.Request.Context(), middleware.GetTenantID(c), c.Param("type"), queryLimit(c))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, events)
}

// ByCorrelation handles GET /api/v1/events/correlation/:id
func (h *EventsHandler) ByCorrelation(c *gin.Context) {
	correlationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "correlation id must be a valid UUID")
		return
	}
	events, err := h.queries.ByCorrelation(c.Request.Context(), correlationID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, events)
}

// Recent handles GET /api/v1/events/recent
func (h *EventsHandler) Recent(c *gin.Context) {
	events, err := h.queries.Recent(c.Request.Context(), middleware.GetTenantID(c), queryLimit(c))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, events)
}

// Verify handles GET /api/v1/events/:id/verify
func (h *EventsHandler) Verify(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "event id must be a valid UUID")
		return
	}
	result, err := h.queries.Verify(c.Request.Context(), eventID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Stats handles GET /api/v1/events/stats
func (h *EventsHandler) Stats(c *gin.Context) {
	counts, err := h.queries.Stats(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, gin.H{"counts_by_type": counts})
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		return 0
	}
	return limit
}
