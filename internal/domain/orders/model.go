// Package orders provides the order lifecycle: creation from web checkout or
// POS sale, the status state machine, stock restoration on cancel/return, and
// the public tracking surface.
package orders

import (
	"context"
	"strings"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
)

// Delivery describes how an order reaches the customer.
type Delivery struct {
	Method  string `db:"delivery_method" json:"method"` // pickup, delivery
	Address string `db:"delivery_address" json:"address,omitempty"`
}

// Payment describes how an order was paid.
type Payment struct {
	Method    string `db:"payment_method" json:"method"` // cash, mobile, card
	Provider  string `db:"payment_provider" json:"provider,omitempty"`
	Reference string `db:"payment_reference" json:"reference,omitempty"`
}

// Payment methods.
const (
	PayCash   = "cash"
	PayMobile = "mobile"
	PayCard   = "card"
)

// Customer identifies the buyer. Phone is matched (whitespace-normalized)
// for self-service cancellation.
type Customer struct {
	Name  string `db:"customer_name" json:"name,omitempty"`
	Phone string `db:"customer_phone" json:"phone,omitempty"`
}

// Location is the courier's last known position. The fields are nullable as
// a unit: an order either has a complete last location or none.
type Location struct {
	Lat       float64   `db:"location_lat" json:"lat"`
	Lng       float64   `db:"location_lng" json:"lng"`
	Accuracy  float64   `db:"location_accuracy" json:"accuracy"`
	Timestamp time.Time `db:"location_at" json:"timestamp"`
}

// OrderItem is a single order line. PriceAt captures the selling price at
// sale time: orders are immune to later product price changes.
type OrderItem struct {
	OrderID   int64          `db:"order_id" json:"-"`
	ProductID int64          `db:"product_id" json:"productId"`
	Name      string         `db:"name" json:"name"`
	Qty       types.Quantity `db:"qty" json:"qty"`
	PriceAt   types.Money    `db:"price_at" json:"priceAt"`
}

// LineTotal returns qty × price for this line.
func (i OrderItem) LineTotal() types.Money {
	return i.PriceAt.Mul(types.NewMoney(i.Qty.Float64()))
}

// Order sources.
const (
	SourceWeb = "web"
	SourcePOS = "pos"
)

// Order is a customer purchase. The ID is server-assigned; POS-originated
// orders additionally carry a client-assigned ExternalID scoped by Source,
// which together form the idempotency key for offline replay.
type Order struct {
	ID         int64   `db:"id" json:"id"`
	Source     string  `db:"source" json:"source"`
	ExternalID *string `db:"external_id" json:"externalId,omitempty"`

	Total  types.Money `db:"total" json:"total"`
	Status Status      `db:"status" json:"status"`

	Delivery Delivery `json:"delivery"`
	Payment  Payment  `json:"payment"`
	Customer Customer `json:"customer"`

	StaffName string `db:"staff_name" json:"staffName,omitempty"`
	StaffRole string `db:"staff_role" json:"staffRole,omitempty"`

	BranchID   int64  `db:"branch_id" json:"branchId"`
	BranchName string `db:"branch_name" json:"branchName,omitempty"`

	// TrackingToken is an opaque capability for public location updates and
	// driver cancellation, deliberately separate from staff auth.
	TrackingToken string `db:"tracking_token" json:"-"`

	Location *Location `json:"location,omitempty"`

	Items []OrderItem `json:"items"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks field-level invariants on a new order.
func (o *Order) Validate(ctx context.Context) error {
	if o.Source != SourceWeb && o.Source != SourcePOS {
		return apperror.NewValidation("invalid order source").
			WithDetail("field", "source").WithDetail("value", o.Source)
	}
	if len(o.Items) == 0 {
		return apperror.NewValidation("order must have at least one item").
			WithDetail("field", "items")
	}
	for i, item := range o.Items {
		if item.ProductID <= 0 {
			return apperror.NewValidation("order item has invalid product id").
				WithDetail("index", i)
		}
		if !item.Qty.IsPositive() {
			return apperror.NewValidation("order item quantity must be positive").
				WithDetail("index", i).WithDetail("productId", item.ProductID)
		}
	}
	switch o.Payment.Method {
	case PayCash, PayMobile, PayCard:
	default:
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "payment.method").WithDetail("value", o.Payment.Method)
	}
	return nil
}

// ComputeTotal sums line totals into Total.
func (o *Order) ComputeTotal() {
	total := types.Zero()
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	o.Total = total
}

// NormalizePhone strips all whitespace for phone comparison.
func NormalizePhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}

// PhoneMatches compares two phone numbers ignoring whitespace.
func (o *Order) PhoneMatches(phone string) bool {
	stored := NormalizePhone(o.Customer.Phone)
	return stored != "" && stored == NormalizePhone(phone)
}
