package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/shifts"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/dto"
)

// ShiftHandler provides register session endpoints.
type ShiftHandler struct {
	*BaseHandler
	shifts *shifts.Service
}

// NewShiftHandler creates a new shift handler.
func NewShiftHandler(base *BaseHandler, shiftService *shifts.Service) *ShiftHandler {
	return &ShiftHandler{BaseHandler: base, shifts: shiftService}
}

// Open starts a register session for the authenticated staff member.
// POST /api/shifts/open
func (h *ShiftHandler) Open(c *gin.Context) {
	sc := h.GetStaff(c)
	if sc == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return
	}

	var req dto.OpenShiftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	branchID := req.BranchID
	if branchID == 0 {
		branchID = sc.BranchID
	}

	shift, err := h.shifts.Open(c.Request.Context(), sc.StaffID, branchID, req.OpeningCash)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(201, shift)
}

// Current returns the caller's open shift, if any.
// GET /api/shifts/current
func (h *ShiftHandler) Current(c *gin.Context) {
	shift, err := h.shifts.Current(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, shift)
}

// RecordMovement appends a cash in/out adjustment to an open shift.
// POST /api/shifts/:id/movements
func (h *ShiftHandler) RecordMovement(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CashMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	movement, err := h.shifts.RecordMovement(c.Request.Context(), id, req.Type, req.Amount, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(201, movement)
}

// Preview computes the live reconciliation for an open shift without
// closing it.
// GET /api/shifts/:id/preview
func (h *ShiftHandler) Preview(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	rec, err := h.shifts.Preview(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// Close reconciles and closes a shift. One-way: the frozen numbers never
// change afterwards. Owner or manager only.
// POST /api/shifts/:id/close
func (h *ShiftHandler) Close(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CloseShiftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	shift, err := h.shifts.Close(c.Request.Context(), id, req.ClosingCash)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, shift)
}

// Get returns a shift with its movement trail.
// GET /api/shifts/:id
func (h *ShiftHandler) Get(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	shift, movements, err := h.shifts.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ShiftSummaryResponse{Shift: shift, Movements: movements})
}

// List returns shifts matching the filter.
// GET /api/shifts?staffId=&branchId=&status=&limit=&offset=
func (h *ShiftHandler) List(c *gin.Context) {
	filter := shifts.ListFilter{
		StaffID:  int64(h.ParseIntQuery(c, "staffId", 0)),
		BranchID: int64(h.ParseIntQuery(c, "branchId", 0)),
		Status:   shifts.ShiftStatus(c.Query("status")),
		Limit:    h.ParseIntQuery(c, "limit", 0),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}

	list, err := h.shifts.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: list, Count: len(list)})
}
