package handler

import (
	"strconv"
	"time"

	appprojection "github.com/airp/ledger/internal/application/projection"
	domainprojection "github.com/airp/ledger/internal/domain/projection"
	"github.com/airp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ReportsHandler serves the read-model reports
type ReportsHandler struct {
	BaseHandler
	trialBalance *appprojection.TrialBalanceService
	aging        domainprojection.AgingRepository
}

// NewReportsHandler creates a new ReportsHandler
func NewReportsHandler(trialBalance *appprojection.TrialBalanceService, aging domainprojection.AgingRepository) *ReportsHandler {
	return &ReportsHandler{trialBalance: trialBalance, aging: aging}
}

// TrialBalance handles GET /api/v1/reports/trial-balance?year=&period=
func (h *ReportsHandler) TrialBalance(c *gin.Context) {
	now := time.Now().UTC()
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		h.BadRequest(c, "year must be an integer")
		return
	}
	period, err := strconv.Atoi(c.DefaultQuery("period", strconv.Itoa(int(now.Month()))))
	if err != nil || period < 1 || period > 12 {
		h.BadRequest(c, "period must be an integer between 1 and 12")
		return
	}

	tb, err := h.trialBalance.Compute(c.Request.Context(), middleware.GetTenantID(c), year, period)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, tb)
}

// APAging handles GET /api/v1/reports/ap-aging
func (h *ReportsHandler) APAging(c *gin.Context) {
	h.agingReport(c, domainprojection.SubledgerAP)
}

// ARAging handles GET /api/v1/reports/ar-aging
func (h *ReportsHandler) ARAging(c *gin.Context) {
	h.agingReport(c, domainprojection.SubledgerAR)
}

func (h *ReportsHandler) agingReport(c *gin.Context, side domainprojection.SubledgerSide) {
	records, err := h.aging.FindLatest(c.Request.Context(), middleware.GetTenantID(c), side)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, records)
}
