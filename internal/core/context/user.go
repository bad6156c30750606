// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Staff roles.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// StaffContext contains authenticated staff member information.
type StaffContext struct {
	StaffID   int64
	Name      string
	Role      string
	BranchID  int64
	SessionID string
}

type staffContextKey struct{}

// WithStaff adds StaffContext to context.
func WithStaff(ctx context.Context, staff *StaffContext) context.Context {
	return context.WithValue(ctx, staffContextKey{}, staff)
}

// GetStaff returns StaffContext from context.
func GetStaff(ctx context.Context) *StaffContext {
	if v, ok := ctx.Value(staffContextKey{}).(*StaffContext); ok {
		return v
	}
	return nil
}

// GetStaffID returns staff ID from context or zero.
func GetStaffID(ctx context.Context) int64 {
	if s := GetStaff(ctx); s != nil {
		return s.StaffID
	}
	return 0
}

// GetBranchID returns branch ID from context or zero.
func GetBranchID(ctx context.Context) int64 {
	if s := GetStaff(ctx); s != nil {
		return s.BranchID
	}
	return 0
}

// IsManager reports whether the staff member can perform manager-level
// operations (managers and admins).
func IsManager(ctx context.Context) bool {
	s := GetStaff(ctx)
	if s == nil {
		return false
	}
	return s.Role == RoleManager || s.Role == RoleAdmin
}
