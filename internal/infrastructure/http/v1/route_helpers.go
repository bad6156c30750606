package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/handlers"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/middleware"
)

// registerPublicRoutes wires everything reachable without a staff session:
// the storefront catalog, web checkout, the tracking-token capability
// surface and the first-run bootstrap.
func registerPublicRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	base := handlers.NewBaseHandler()

	authHandler := handlers.NewAuthHandler(base, cfg.StaffService)
	rg.POST("/auth/login", authHandler.Login)

	staffHandler := handlers.NewStaffHandler(base, cfg.StaffService)
	rg.POST("/staff/bootstrap", staffHandler.Bootstrap)

	productHandler := handlers.NewProductHandler(base, cfg.CatalogService)
	rg.GET("/products", productHandler.List)
	rg.GET("/products/:id", productHandler.Get)

	branchHandler := handlers.NewBranchHandler(base, cfg.BranchService)
	rg.GET("/branches", branchHandler.List)
	rg.GET("/branches/:id", branchHandler.Get)

	orderHandler := handlers.NewOrderHandler(base, cfg.OrderService)
	rg.POST("/orders/checkout", orderHandler.Checkout)
	rg.POST("/orders/:id/cancel", orderHandler.Cancel)

	track := rg.Group("/track")
	{
		track.GET("/:token", orderHandler.Track)
		track.POST("/:token/location", orderHandler.UpdateLocation)
		track.POST("/:token/cancel", orderHandler.CancelByToken)
	}

	reportsHandler := handlers.NewReportsHandler(base, cfg.ReportService)
	rg.GET("/reports/check-discount", reportsHandler.CheckDiscount)
}

// registerStaffRoutes wires the authenticated staff surface. Catalog and
// account mutations additionally require the manager role; order handling
// and shift work are open to cashiers.
func registerStaffRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	base := handlers.NewBaseHandler()
	manager := middleware.RequireManager()

	authHandler := handlers.NewAuthHandler(base, cfg.StaffService)
	rg.GET("/auth/me", authHandler.Me)
	rg.POST("/auth/change-password", authHandler.ChangePassword)

	productHandler := handlers.NewProductHandler(base, cfg.CatalogService)
	rg.GET("/products/updated-since", productHandler.UpdatedSince)
	rg.POST("/products", manager, productHandler.Create)
	rg.PUT("/products/:id", manager, productHandler.Update)
	rg.POST("/products/:id/adjust-stock", manager, productHandler.AdjustStock)
	rg.POST("/products/import", manager, productHandler.Import)

	orderHandler := handlers.NewOrderHandler(base, cfg.OrderService)
	rg.GET("/orders", orderHandler.List)
	rg.GET("/orders/updated-since", orderHandler.UpdatedSince)
	rg.GET("/orders/:id", orderHandler.Get)
	rg.POST("/orders/:id/status", orderHandler.ChangeStatus)

	shiftHandler := handlers.NewShiftHandler(base, cfg.ShiftService)
	shiftsGroup := rg.Group("/shifts")
	{
		shiftsGroup.GET("", shiftHandler.List)
		shiftsGroup.POST("/open", shiftHandler.Open)
		shiftsGroup.GET("/current", shiftHandler.Current)
		shiftsGroup.GET("/:id", shiftHandler.Get)
		shiftsGroup.GET("/:id/preview", shiftHandler.Preview)
		shiftsGroup.POST("/:id/movements", shiftHandler.RecordMovement)
		shiftsGroup.POST("/:id/close", shiftHandler.Close)
	}

	reportsHandler := handlers.NewReportsHandler(base, cfg.ReportService)
	reportsGroup := rg.Group("/reports", manager)
	{
		reportsGroup.GET("/overview", reportsHandler.Overview)
		reportsGroup.GET("/top-products", reportsHandler.TopProducts)
		reportsGroup.GET("/staff-performance", reportsHandler.StaffPerformance)
	}

	staffHandler := handlers.NewStaffHandler(base, cfg.StaffService)
	staffGroup := rg.Group("/staff", manager)
	{
		staffGroup.GET("", staffHandler.List)
		staffGroup.POST("", staffHandler.Create)
		staffGroup.PUT("/:id", staffHandler.Update)
		staffGroup.POST("/:id/deactivate", staffHandler.Deactivate)
	}

	branchHandler := handlers.NewBranchHandler(base, cfg.BranchService)
	rg.POST("/branches", manager, branchHandler.Create)
	rg.PUT("/branches/:id", manager, branchHandler.Update)

	if cfg.AuditReader != nil {
		auditHandler := handlers.NewAuditHandler(base, cfg.AuditReader)
		rg.GET("/audit", manager, auditHandler.Recent)
	}
}

// registerPOSRoutes wires the device-token surface: sync and the offline
// credential snapshot.
func registerPOSRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	base := handlers.NewBaseHandler()

	syncHandler := handlers.NewSyncHandler(base, cfg.SyncEngine)
	rg.POST("/sync", syncHandler.Sync)

	staffHandler := handlers.NewStaffHandler(base, cfg.StaffService)
	rg.GET("/staff-directory", staffHandler.Directory)
}
