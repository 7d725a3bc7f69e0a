package handler

import (
	"errors"

	"github.com/airp/ledger/internal/domain/masterdata"
	"github.com/airp/ledger/internal/domain/shared"
	"github.com/airp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AccountsHandler serves the chart of accounts lookup endpoints
type AccountsHandler struct {
	BaseHandler
	accounts masterdata.AccountRepository
}

// NewAccountsHandler creates a new AccountsHandler
func NewAccountsHandler(accounts masterdata.AccountRepository) *AccountsHandler {
	return &AccountsHandler{accounts: accounts}
}

// List handles GET /api/v1/accounts; ?active=true limits to postable accounts,
// ?type=ASSET filters by classification.
func (h *AccountsHandler) List(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	if accountType := c.Query("type"); accountType != "" {
		accounts, err := h.accounts.FindByType(c.Request.Context(), tenantID, masterdata.AccountType(accountType))
		if err != nil {
			h.DomainError(c, err)
			return
		}
		h.Success(c, accounts)
		return
	}

	activeOnly := c.Query("active") == "true"
	accounts, err := h.accounts.FindAllForTenant(c.Request.Context(), tenantID, activeOnly)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, accounts)
}

// ByCode handles GET /api/v1/accounts/:code
func (h *AccountsHandler) ByCode(c *gin.Context) {
	account, err := h.accounts.FindByCode(c.Request.Context(), middleware.GetTenantID(c), c.Param("code"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "account not found")
			return
		}
		h.DomainError(c, err)
		return
	}
	h.Success(c, account)
}
