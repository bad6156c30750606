package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/staff"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/dto"
)

// AuthHandler provides login and session endpoints.
type AuthHandler struct {
	*BaseHandler
	staff *staff.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, staffService *staff.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, staff: staffService}
}

// Login authenticates staff credentials and issues a session token.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	session, err := h.staff.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Staff:     session.Staff,
	})
}

// Me returns the authenticated staff member's account.
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	sc := h.GetStaff(c)
	if sc == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return
	}

	member, err := h.staff.Get(c.Request.Context(), sc.StaffID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, member)
}

// ChangePassword rotates the caller's own password.
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	sc := h.GetStaff(c)
	if sc == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return
	}

	var req dto.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.staff.ChangePassword(c.Request.Context(), sc.StaffID, req.NewPassword); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "password changed")
}
