package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	appctx "github.com/Senanu-web/bskal-enterprise/internal/core/context"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/staff"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/dto"
)

// StaffHandler provides staff account management endpoints.
type StaffHandler struct {
	*BaseHandler
	staff *staff.Service
}

// NewStaffHandler creates a new staff handler.
func NewStaffHandler(base *BaseHandler, staffService *staff.Service) *StaffHandler {
	return &StaffHandler{BaseHandler: base, staff: staffService}
}

// List returns all staff accounts.
// GET /api/staff
func (h *StaffHandler) List(c *gin.Context) {
	list, err := h.staff.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: list, Count: len(list)})
}

// Create registers a new staff account.
// POST /api/staff
func (h *StaffHandler) Create(c *gin.Context) {
	var req dto.CreateStaffRequest
	if !h.BindJSON(c, &req) {
		return
	}

	member := &staff.Staff{
		Name:     req.Name,
		Username: req.Username,
		Role:     req.Role,
		BranchID: req.BranchID,
	}
	if err := h.staff.Create(c.Request.Context(), member, req.Password); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, member.ID)
}

// Bootstrap creates the first manager account on an empty installation.
// Public, but refuses as soon as any staff account exists.
// POST /api/staff/bootstrap
func (h *StaffHandler) Bootstrap(c *gin.Context) {
	existing, err := h.staff.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	if len(existing) > 0 {
		h.Error(c, apperror.NewForbidden("installation already has staff accounts"))
		return
	}

	var req dto.CreateStaffRequest
	if !h.BindJSON(c, &req) {
		return
	}

	member := &staff.Staff{
		Name:     req.Name,
		Username: req.Username,
		Role:     appctx.RoleManager,
		BranchID: req.BranchID,
	}
	if err := h.staff.Create(c.Request.Context(), member, req.Password); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, member.ID)
}

// Update edits account fields.
// PUT /api/staff/:id
func (h *StaffHandler) Update(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateStaffRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.staff.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	existing.Name = req.Name
	existing.Role = req.Role
	existing.BranchID = req.BranchID
	if err := h.staff.Update(c.Request.Context(), existing); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, existing)
}

// Deactivate disables an account without deleting its history.
// POST /api/staff/:id/deactivate
func (h *StaffHandler) Deactivate(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.staff.Deactivate(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "staff deactivated")
}

// Directory returns the credential snapshot POS devices cache for offline
// login. Guarded by the device token, not a staff session.
// GET /api/pos/staff-directory
func (h *StaffHandler) Directory(c *gin.Context) {
	list, err := h.staff.Directory(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	creds := make([]dto.StaffCredential, 0, len(list))
	for _, s := range list {
		creds = append(creds, dto.NewStaffCredential(s))
	}
	h.OK(c, dto.ListResponse{Items: creds, Count: len(creds)})
}
