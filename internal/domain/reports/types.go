// Package reports provides management reporting: profit/loss, weekly sales,
// customer loyalty tiers, top products and staff performance. The sync
// endpoint ships an Overview to every POS device with each snapshot.
package reports

import (
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
)

// ProfitLoss summarizes revenue against cost for a period.
// Cancelled orders are excluded; returned orders subtract from revenue.
type ProfitLoss struct {
	Revenue types.Money `json:"revenue"`
	Cost    types.Money `json:"cost"`
	Profit  types.Money `json:"profit"`
}

// WeeklySalesPoint is one day in the trailing-week sales series.
type WeeklySalesPoint struct {
	Day    string      `json:"day"` // YYYY-MM-DD
	Orders int         `json:"orders"`
	Total  types.Money `json:"total"`
}

// LoyaltyCustomer is a repeat customer keyed by normalized phone number.
type LoyaltyCustomer struct {
	Phone       string      `json:"phone"`
	Name        string      `json:"name"`
	Orders      int         `json:"orders"`
	Spend       types.Money `json:"spend"`
	DiscountPct int         `json:"discountPct"`
}

// TopProduct is one row of the best-sellers report.
type TopProduct struct {
	ProductID int64          `json:"productId"`
	Name      string         `json:"name"`
	QtySold   types.Quantity `json:"qtySold"`
	Revenue   types.Money    `json:"revenue"`
}

// StaffPerformance aggregates per-staff sales.
type StaffPerformance struct {
	StaffName string      `json:"staffName"`
	Orders    int         `json:"orders"`
	Revenue   types.Money `json:"revenue"`
}

// Overview bundles the reports shipped with every sync snapshot.
type Overview struct {
	ProfitLoss  ProfitLoss         `json:"profitLoss"`
	WeeklySales []WeeklySalesPoint `json:"weeklySales"`
	Loyalty     []LoyaltyCustomer  `json:"loyalty"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// Loyalty tier thresholds: order counts map to a percentage discount.
const (
	TierBronzeOrders = 20
	TierSilverOrders = 50
	TierGoldOrders   = 100

	TierBronzePct = 5
	TierSilverPct = 10
	TierGoldPct   = 15
)

// DiscountPctFor returns the loyalty discount for an order count.
func DiscountPctFor(orderCount int) int {
	switch {
	case orderCount >= TierGoldOrders:
		return TierGoldPct
	case orderCount >= TierSilverOrders:
		return TierSilverPct
	case orderCount >= TierBronzeOrders:
		return TierBronzePct
	default:
		return 0
	}
}
