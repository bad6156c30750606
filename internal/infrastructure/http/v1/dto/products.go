package dto

import (
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
	"github.com/Senanu-web/bskal-enterprise/internal/importer"
)

// CreateProductRequest adds a product to the catalog.
type CreateProductRequest struct {
	Name     string         `json:"name" binding:"required"`
	Category *string        `json:"category"`
	Price    types.Money    `json:"price"`
	Cost     types.Money    `json:"cost"`
	Stock    types.Quantity `json:"stock"`
	Barcode  *string        `json:"barcode"`
	ImageURL *string        `json:"imageUrl"`
}

// ToProduct builds the domain product.
func (r CreateProductRequest) ToProduct() *catalog.Product {
	p := catalog.NewProduct(r.Name, r.Price, r.Cost)
	p.Category = r.Category
	p.Stock = r.Stock
	p.Barcode = r.Barcode
	p.ImageURL = r.ImageURL
	return p
}

// UpdateProductRequest replaces a product's editable fields.
type UpdateProductRequest struct {
	Name     string         `json:"name" binding:"required"`
	Category *string        `json:"category"`
	Price    types.Money    `json:"price"`
	Cost     types.Money    `json:"cost"`
	Stock    types.Quantity `json:"stock"`
	Barcode  *string        `json:"barcode"`
	ImageURL *string        `json:"imageUrl"`

	// UpdatedAt is the editor's logical clock; stale edits lose silently
	// when a newer write already landed. Zero means "now".
	UpdatedAt time.Time `json:"updatedAt"`
}

// AdjustStockRequest applies a relative stock correction.
type AdjustStockRequest struct {
	Delta  types.Quantity `json:"delta" binding:"required"`
	Reason string         `json:"reason"`
}

// AdjustStockResponse returns the resulting level after clamping.
type AdjustStockResponse struct {
	ProductID int64          `json:"productId"`
	Stock     types.Quantity `json:"stock"`
}

// ImportResponse summarizes a spreadsheet import.
type ImportResponse struct {
	Created int                 `json:"created"`
	Updated int                 `json:"updated"`
	Total   int                 `json:"total"`
	Errors  []importer.RowError `json:"errors,omitempty"`
}
