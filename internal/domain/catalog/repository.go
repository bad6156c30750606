package catalog

import (
	"context"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
)

// StockLine names a product and a quantity, used for bulk stock mutations.
type StockLine struct {
	ProductID int64
	Qty       types.Quantity
}

// ListFilter narrows List results.
type ListFilter struct {
	Search   string // matches name or barcode
	Category string
	Limit    int
	Offset   int
}

// Repository defines persistence operations for products.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)
	GetByName(ctx context.Context, name string) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)

	// ListUpdatedSince returns products with UpdatedAt >= since.
	// A zero since returns everything (first sync).
	ListUpdatedSince(ctx context.Context, since time.Time) ([]*Product, error)

	// UpdateIfNewer applies p only when p.UpdatedAt is not strictly earlier
	// than the stored UpdatedAt. Returns false when the write lost the
	// last-writer-wins comparison and was not applied.
	UpdateIfNewer(ctx context.Context, p *Product) (bool, error)

	// AdjustStock applies a relative delta (may be negative) and stamps
	// UpdatedAt. The committed stock never goes below zero: negative
	// corrections clamp at zero. Returns the new stock level.
	AdjustStock(ctx context.Context, id int64, delta types.Quantity) (types.Quantity, error)

	// DecrementStockGuarded atomically decrements stock for every line,
	// failing the whole set if any product lacks sufficient stock.
	// Callers must run it inside a transaction.
	DecrementStockGuarded(ctx context.Context, lines []StockLine) error

	// RestoreStock adds each line's qty back (order cancel/return path).
	RestoreStock(ctx context.Context, lines []StockLine) error

	// ReplaceAll transactionally deletes all products and inserts the given
	// set. Used only by the bulk "replace" import.
	ReplaceAll(ctx context.Context, products []*Product) error
}
