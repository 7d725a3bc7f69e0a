package middleware

import (
	"net/http"

	"github.com/airp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantIDHeader is the header carrying the tenant id
const TenantIDHeader = "X-Tenant-ID"

const tenantContextKey = "tenant_id"

// RequireTenant extracts and validates the tenant id. Requests without a
// valid tenant uuid are rejected before any handler runs; tenancy is not
// optional anywhere in the API.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TenantIDHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse("TENANT_REQUIRED", "X-Tenant-ID header is required"))
			return
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse("TENANT_REQUIRED", "X-Tenant-ID must be a valid UUID"))
			return
		}
		c.Set(tenantContextKey, tenantID)
		c.Next()
	}
}

// GetTenantID returns the tenant id stored by RequireTenant
func GetTenantID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(tenantContextKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
