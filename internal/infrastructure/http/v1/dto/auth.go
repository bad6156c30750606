package dto

import (
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/domain/staff"
)

// LoginRequest carries staff credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the session token and the account it belongs to.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Staff     *staff.Staff `json:"staff"`
}

// ChangePasswordRequest rotates the caller's password.
type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// CreateStaffRequest registers a new staff account.
type CreateStaffRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
	BranchID int64  `json:"branchId"`
}

// StaffCredential is one entry of the POS offline credential snapshot.
// Unlike the admin staff listing it carries the password derivation, so it
// is only ever served behind the device token.
type StaffCredential struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	BranchID     int64  `json:"branchId"`
	PasswordHash string `json:"passwordHash"`
	Salt         string `json:"salt"`
	Active       bool   `json:"active"`
}

// NewStaffCredential maps a staff account into the snapshot form.
func NewStaffCredential(s *staff.Staff) StaffCredential {
	return StaffCredential{
		ID:           s.ID,
		Name:         s.Name,
		Username:     s.Username,
		Role:         s.Role,
		BranchID:     s.BranchID,
		PasswordHash: s.PasswordHash,
		Salt:         s.Salt,
		Active:       s.Active,
	}
}

// UpdateStaffRequest edits account fields; credentials rotate separately.
type UpdateStaffRequest struct {
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required"`
	BranchID int64  `json:"branchId"`
}
