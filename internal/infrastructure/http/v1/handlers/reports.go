package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Senanu-web/bskal-enterprise/internal/domain/reports"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/dto"
)

// ReportsHandler provides management report endpoints.
type ReportsHandler struct {
	*BaseHandler
	reports *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, reportService *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, reports: reportService}
}

// Overview returns the bundled dashboard: month-to-date profit/loss,
// trailing-week sales and loyalty customers.
// GET /api/reports/overview?branchId=
func (h *ReportsHandler) Overview(c *gin.Context) {
	branchID := int64(h.ParseIntQuery(c, "branchId", 0))

	overview, err := h.reports.Overview(c.Request.Context(), branchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, overview)
}

// TopProducts ranks best sellers for a period (default: trailing 30 days).
// GET /api/reports/top-products?from=&to=&limit=
func (h *ReportsHandler) TopProducts(c *gin.Context) {
	now := time.Now().UTC()
	from := h.ParseTimeQuery(c, "from", now.AddDate(0, 0, -30))
	to := h.ParseTimeQuery(c, "to", now)
	limit := h.ParseIntQuery(c, "limit", 10)

	top, err := h.reports.TopProducts(c.Request.Context(), from, to, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: top, Count: len(top)})
}

// StaffPerformance aggregates sales per cashier for a period.
// GET /api/reports/staff-performance?from=&to=
func (h *ReportsHandler) StaffPerformance(c *gin.Context) {
	now := time.Now().UTC()
	from := h.ParseTimeQuery(c, "from", now.AddDate(0, 0, -30))
	to := h.ParseTimeQuery(c, "to", now)

	perf, err := h.reports.StaffPerformance(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: perf, Count: len(perf)})
}

// CheckDiscount is the public loyalty tier lookup used by the storefront.
// GET /api/reports/check-discount?phone=
func (h *ReportsHandler) CheckDiscount(c *gin.Context) {
	discount, err := h.reports.CheckDiscount(c.Request.Context(), c.Query("phone"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, discount)
}
