package dto

import (
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
)

// CheckoutRequest is the public web checkout body.
type CheckoutRequest struct {
	Items    []orders.ItemInput `json:"items" binding:"required,min=1"`
	Delivery orders.Delivery    `json:"delivery"`
	Payment  orders.Payment     `json:"payment"`
	Customer orders.Customer    `json:"customer"`
	BranchID int64              `json:"branchId"`
}

// CheckoutResponse returns the created order with its tracking capability.
// The token is only ever shown here; reads by order id redact it.
type CheckoutResponse struct {
	Order         *orders.Order `json:"order"`
	TrackingToken string        `json:"trackingToken"`
}

// ChangeStatusRequest moves an order through the state machine.
type ChangeStatusRequest struct {
	Status orders.Status `json:"status" binding:"required"`
}

// CancelOrderRequest is self-service cancellation by the customer.
type CancelOrderRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// LocationUpdateRequest is a courier position ping by tracking token.
type LocationUpdateRequest struct {
	Lat      float64 `json:"lat" binding:"required"`
	Lng      float64 `json:"lng" binding:"required"`
	Accuracy float64 `json:"accuracy"`
}

// OrderListQuery filters the order listing.
type OrderListQuery struct {
	Status   string    `form:"status"`
	Source   string    `form:"source"`
	BranchID int64     `form:"branchId"`
	From     time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To       time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit    int       `form:"limit"`
	Offset   int       `form:"offset"`
}
