package orders

import (
	"context"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
)

// ListFilter narrows List results.
type ListFilter struct {
	Status   Status
	Source   string
	BranchID int64
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

// CashTotals aggregates cash flow for shift reconciliation. Cancelled
// orders are excluded entirely; returned orders count as refunds, not sales.
type CashTotals struct {
	CashSales   types.Money
	CashRefunds types.Money
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create inserts the order and its items atomically and assigns the
	// server-side ID. Callers must run it inside a transaction when paired
	// with stock mutations.
	Create(ctx context.Context, o *Order) error

	GetByID(ctx context.Context, id int64) (*Order, error)
	GetBySourceExternalID(ctx context.Context, source, externalID string) (*Order, error)
	GetByTrackingToken(ctx context.Context, token string) (*Order, error)

	List(ctx context.Context, filter ListFilter) ([]*Order, error)

	// ListUpdatedSince returns orders with UpdatedAt >= since.
	// A zero since returns everything (first sync).
	ListUpdatedSince(ctx context.Context, since time.Time) ([]*Order, error)

	UpdateStatus(ctx context.Context, id int64, status Status, updatedAt time.Time) error

	// SetLocation overwrites the single last-known-location field.
	SetLocation(ctx context.Context, id int64, loc Location) error

	// CashTotalsBetween sums cash sales and cash refunds for a branch in
	// [from, to]. A zero branchID means all branches.
	CashTotalsBetween(ctx context.Context, branchID int64, from, to time.Time) (CashTotals, error)
}
