package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
	"github.com/Senanu-web/bskal-enterprise/internal/importer"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/dto"
)

// ProductHandler provides catalog endpoints.
type ProductHandler struct {
	*BaseHandler
	catalog *catalog.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, catalogService *catalog.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, catalog: catalogService}
}

// List returns products matching the filter.
// GET /api/products?search=&category=&limit=&offset=
func (h *ProductHandler) List(c *gin.Context) {
	filter := catalog.ListFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Limit:    h.ParseIntQuery(c, "limit", 0),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}

	products, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: products, Count: len(products)})
}

// Get returns one product.
// GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Create adds a product.
// POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToProduct()
	if err := h.catalog.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p.ID)
}

// Update replaces a product's editable fields. An explicit updatedAt in the
// body participates in last-writer-wins; a stale edit is reported as a
// conflict instead of overwriting newer data.
// PUT /api/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := &catalog.Product{
		ID:        id,
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		Cost:      req.Cost,
		Stock:     req.Stock,
		Barcode:   req.Barcode,
		ImageURL:  req.ImageURL,
		UpdatedAt: req.UpdatedAt,
	}

	if req.UpdatedAt.IsZero() {
		if err := h.catalog.Update(c.Request.Context(), p); err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, p)
		return
	}

	applied, err := h.catalog.ApplyExternalUpdate(c.Request.Context(), p)
	if err != nil {
		h.Error(c, err)
		return
	}
	if !applied {
		h.Error(c, apperror.NewConflict("a newer edit already exists").
			WithDetail("productId", id))
		return
	}
	h.OK(c, p)
}

// AdjustStock applies a relative stock correction, clamping at zero.
// POST /api/products/:id/adjust-stock
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	stock, err := h.catalog.AdjustStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.AdjustStockResponse{ProductID: id, Stock: stock})
}

// Import ingests an xlsx product sheet. Mode "merge" (default) upserts,
// "replace" wipes the catalog first.
// POST /api/products/import?mode=merge|replace  (multipart field "file")
func (h *ProductHandler) Import(c *gin.Context) {
	mode := catalog.ImportMode(c.DefaultQuery("mode", string(catalog.ImportMerge)))

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("multipart field \"file\" is required").
			WithDetail("error", err.Error()))
		return
	}
	defer file.Close()

	products, rowErrs, err := importer.ParseProducts(file)
	if err != nil {
		h.Error(c, err)
		return
	}
	if len(products) == 0 {
		h.Error(c, apperror.NewValidation("no importable rows found").
			WithDetail("rowErrors", rowErrs))
		return
	}

	stats, err := h.catalog.Import(c.Request.Context(), mode, products)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ImportResponse{
		Created: stats.Created,
		Updated: stats.Updated,
		Total:   stats.Total,
		Errors:  rowErrs,
	})
}

// UpdatedSince returns products changed at or after the given cursor.
// Used by thin clients that mirror the catalog without full sync.
// GET /api/products/updated-since?since=RFC3339
func (h *ProductHandler) UpdatedSince(c *gin.Context) {
	since := h.ParseTimeQuery(c, "since", time.Time{})
	products, err := h.catalog.ListUpdatedSince(c.Request.Context(), since)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: products, Count: len(products)})
}
