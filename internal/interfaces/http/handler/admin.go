package handler

import (
	"github.com/airp/ledger/internal/infrastructure/bus"
	"github.com/airp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves operational endpoints
type AdminHandler struct {
	BaseHandler
	dispatcher *bus.Dispatcher
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(dispatcher *bus.Dispatcher) *AdminHandler {
	return &AdminHandler{dispatcher: dispatcher}
}

// Redrive handles POST /api/v1/admin/redrive: rewinds the publish cursor so
// every event after fromSequence is republished to the bus. Consumers are
// idempotent, so a backfill is safe to run at any time.
func (h *AdminHandler) Redrive(c *gin.Context) {
	var req dto.RedriveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if err := h.dispatcher.Redrive(c.Request.Context(), *req.FromSequence); err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, gin.H{"status": "redrive scheduled", "from_sequence": *req.FromSequence})
}
