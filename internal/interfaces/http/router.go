package http

import (
	"github.com/airp/ledger/internal/interfaces/http/handler"
	"github.com/airp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig carries the handlers the router wires up. Dispatcher-backed
// admin routes are optional: the projector binary serves no HTTP admin.
type RouterConfig struct {
	Logger   *zap.Logger
	Ledger   *handler.LedgerHandler
	Events   *handler.EventsHandler
	Accounts *handler.AccountsHandler
	Reports  *handler.ReportsHandler
	Admin    *handler.AdminHandler
	Health   *handler.HealthHandler
}

// NewRouter builds the gin engine with all routes and middleware
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogging(cfg.Logger))

	router.GET("/health", cfg.Health.Health)

	api := router.Group("/api/v1")
	api.Use(middleware.RequireTenant())
	{
		api.POST("/journal-entries", cfg.Ledger.PostEntry)
		api.POST("/journal-entries/:id/reverse", cfg.Ledger.ReverseEntry)

		api.POST("/subledger/ap-invoices", cfg.Ledger.RecordAPInvoice)
		api.POST("/subledger/ar-invoices", cfg.Ledger.RecordARInvoice)
		api.POST("/subledger/payments", cfg.Ledger.RecordPayment)

		events := api.Group("/events")
		{
			events.GET("/aggregate/:id", cfg.Events.ByAggregate)
			events.GET("/type/:type", cfg.Events.ByType)
			events.GET("/correlation/:id", cfg.Events.ByCorrelation)
			events.GET("/recent", cfg.Events.Recent)
			events.GET("/stats", cfg.Events.Stats)
			events.GET("/:id/verify", cfg.Events.Verify)
		}

		api.GET("/accounts", cfg.Accounts.List)
		api.GET("/accounts/:code", cfg.Accounts.ByCode)

		reports := api.Group("/reports")
		{
			reports.GET("/trial-balance", cfg.Reports.TrialBalance)
			reports.GET("/ap-aging", cfg.Reports.APAging)
			reports.GET("/ar-aging", cfg.Reports.ARAging)
		}

		if cfg.Admin != nil {
			api.POST("/admin/redrive", cfg.Admin.Redrive)
		}
	}

	return router
}
