package reports

import (
	"context"
	"time"
)

// Repository defines the aggregate queries behind each report.
type Repository interface {
	// ProfitLoss aggregates revenue/cost in [from, to]. A zero branchID
	// means all branches.
	ProfitLoss(ctx context.Context, branchID int64, from, to time.Time) (ProfitLoss, error)

	// WeeklySales returns one point per day for the trailing seven days.
	WeeklySales(ctx context.Context, branchID int64, until time.Time) ([]WeeklySalesPoint, error)

	// LoyaltyCustomers groups order history by normalized customer phone.
	LoyaltyCustomers(ctx context.Context) ([]LoyaltyCustomer, error)

	// TopProducts ranks products by quantity sold in [from, to].
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error)

	// StaffPerformance aggregates sales per staff name in [from, to].
	StaffPerformance(ctx context.Context, from, to time.Time) ([]StaffPerformance, error)
}
