package handler

import (
	appledger "github.com/airp/ledger/internal/application/ledger"
	domainledger "github.com/airp/ledger/internal/domain/ledger"
	"github.com/airp/ledger/internal/interfaces/http/dto"
	"github.com/airp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerHandler serves journal entry posting, reversal and sub-ledger events
type LedgerHandler struct {
	BaseHandler
	posting   *appledger.PostingService
	subledger *appledger.SubledgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(posting *appledger.PostingService, subledger *appledger.SubledgerService) *LedgerHandler {
	return &LedgerHandler{posting: posting, subledger: subledger}
}

// PostEntry handles POST /api/v1/journal-entries
func (h *LedgerHandler) PostEntry(c *gin.Context) {
	var req dto.PostJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	lines, err := req.ToLines()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.posting.PostEntry(c.Request.Context(), middleware.GetTenantID(c), appledger.PostEntryInput{
		EntryDate:   req.EntryDate,
		PostingDate: req.PostingDate,
		Description: req.Description,
		Currency:    req.Currency,
		SourceType:  req.SourceType,
		SourceRefID: req.SourceRefID,
		Lines:       lines,
		UserID:      userID(c),
	})
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Created(c, result)
}

// ReverseEntry handles POST /api/v1/journal-entries/:id/reverse
func (h *LedgerHandler) ReverseEntry(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "entry id must be a valid UUID")
		return
	}
	var req dto.ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.posting.ReverseEntry(c.Request.Context(), middleware.GetTenantID(c), entryID, req.Reason, userID(c))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Created(c, result)
}

// RecordAPInvoice handles POST /api/v1/subledger/ap-invoices
func (h *LedgerHandler) RecordAPInvoice(c *gin.Context) {
	var req dto.RecordInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	gross, err := decimal.NewFromString(req.GrossAmount)
	if err != nil {
		h.BadRequest(c, "grossAmount is not a valid decimal")
		return
	}

	result, err := h.subledger.RecordInvoiceReceived(c.Request.Context(), middleware.GetTenantID(c), &domainledger.InvoiceReceivedPayload{
		InvoiceID:     req.InvoiceID,
		VendorID:      req.PartyID,
		InvoiceNumber: req.InvoiceNumber,
		Currency:      req.Currency,
		GrossAmount:   gross,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
	}, userID(c))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Created(c, result)
}

// RecordARInvoice handles POST /api/v1/subledger/ar-invoices
func (h *LedgerHandler) RecordARInvoice(c *gin.Context) {
	var req dto.RecordInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	gross, err := decimal.NewFromString(req.GrossAmount)
	if err != nil {
		h.BadRequest(c, "grossAmount is not a valid decimal")
		return
	}

	result, err := h.subledger.RecordInvoiceIssued(c.Request.Context(), middleware.GetTenantID(c), &domainledger.InvoiceIssuedPayload{
		InvoiceID:     req.InvoiceID,
		CustomerID:    req.PartyID,
		InvoiceNumber: req.InvoiceNumber,
		Currency:      req.Currency,
		GrossAmount:   gross,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
	}, userID(c))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Created(c, result)
}

// RecordPayment handles POST /api/v1/subledger/payments
func (h *LedgerHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "amount is not a valid decimal")
		return
	}

	result, err := h.subledger.RecordPayment(c.Request.Context(), middleware.GetTenantID(c), &domainledger.PaymentExecutedPayload{
		PaymentID:   req.PaymentID,
		InvoiceID:   req.InvoiceID,
		PaymentType: req.PaymentType,
		Currency:    req.Currency,
		Amount:      amount,
		PaymentDate: req.PaymentDate,
	}, userID(c))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Created(c, result)
}

// userID extracts an optional acting user id from the X-User-ID header
func userID(c *gin.Context) *uuid.UUID {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
