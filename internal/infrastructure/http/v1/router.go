// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/Senanu-web/bskal-enterprise/internal/domain/audit"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/branches"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/possync"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/reports"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/shifts"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/staff"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/handlers"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/middleware"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/storage/postgres"
	"github.com/Senanu-web/bskal-enterprise/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Pool is the database pool for health checks; nil in memory mode.
	Pool *postgres.Pool

	// JWTValidator for staff token validation
	JWTValidator middleware.JWTValidator

	// POSToken is the shared device credential guarding the sync surface.
	// Empty disables POS endpoints.
	POSToken string

	StaffService   *staff.Service
	CatalogService *catalog.Service
	OrderService   *orders.Service
	ShiftService   *shifts.Service
	BranchService  *branches.Service
	ReportService  *reports.Service
	SyncEngine     *possync.Engine
	AuditReader    audit.Reader
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api")
	{
		// Public surface: storefront, tracking and first-run bootstrap.
		registerPublicRoutes(api, cfg)

		// Staff endpoints: JWT session required.
		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		registerStaffRoutes(protected, cfg)

		// POS device endpoints: shared provisioning token, not a session.
		pos := api.Group("/pos")
		pos.Use(middleware.POSAuth(cfg.POSToken))
		registerPOSRoutes(pos, cfg)
	}

	return router
}
