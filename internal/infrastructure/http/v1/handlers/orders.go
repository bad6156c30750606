package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/dto"
)

// OrderHandler provides order lifecycle endpoints.
type OrderHandler struct {
	*BaseHandler
	orders *orders.Service
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, orderService *orders.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, orders: orderService}
}

// Checkout places a web order. Public: no staff session required.
// POST /api/orders/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orders.Create(c.Request.Context(), orders.CreateInput{
		Source:   orders.SourceWeb,
		Items:    req.Items,
		Delivery: req.Delivery,
		Payment:  req.Payment,
		Customer: req.Customer,
		BranchID: req.BranchID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(201, dto.CheckoutResponse{Order: order, TrackingToken: order.TrackingToken})
}

// List returns orders matching the filter.
// GET /api/orders
func (h *OrderHandler) List(c *gin.Context) {
	var q dto.OrderListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	list, err := h.orders.List(c.Request.Context(), orders.ListFilter{
		Status:   orders.Status(q.Status),
		Source:   q.Source,
		BranchID: q.BranchID,
		From:     q.From,
		To:       q.To,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: list, Count: len(list)})
}

// Get returns one order.
// GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// ChangeStatus moves an order through the state machine.
// POST /api/orders/:id/status
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ChangeStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orders.ChangeStatus(c.Request.Context(), orders.Ref{ID: id}, req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// Cancel is self-service cancellation by the customer. The phone must match
// the one on the order and the order must be inside the cancellation window.
// POST /api/orders/:id/cancel  (public)
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CancelOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orders.CancelByCustomer(c.Request.Context(), id, req.Phone)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// UpdatedSince returns orders changed at or after the given cursor.
// GET /api/orders/updated-since?since=RFC3339
func (h *OrderHandler) UpdatedSince(c *gin.Context) {
	since := h.ParseTimeQuery(c, "since", time.Time{})
	list, err := h.orders.ListUpdatedSince(c.Request.Context(), since)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: list, Count: len(list)})
}

// --- Public tracking surface (capability: tracking token) ---

// Track returns the order the token points at. Public.
// GET /api/track/:token
func (h *OrderHandler) Track(c *gin.Context) {
	order, err := h.orders.TrackByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// UpdateLocation records the courier's position. Each ping overwrites the
// previous one; only the last known location is kept.
// POST /api/track/:token/location
func (h *OrderHandler) UpdateLocation(c *gin.Context) {
	var req dto.LocationUpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orders.UpdateLocation(c.Request.Context(), c.Param("token"), orders.Location{
		Lat:      req.Lat,
		Lng:      req.Lng,
		Accuracy: req.Accuracy,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// CancelByToken cancels the order via the tracking capability (driver
// cannot deliver). Not bound by the customer cancellation window.
// POST /api/track/:token/cancel
func (h *OrderHandler) CancelByToken(c *gin.Context) {
	order, err := h.orders.CancelByTrackingToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}
