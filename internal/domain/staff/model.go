// Package staff provides staff accounts, credential verification and
// session token issuance.
package staff

import (
	"context"
	"strings"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	appctx "github.com/Senanu-web/bskal-enterprise/internal/core/context"
)

// Staff is an employee account. PasswordHash/Salt hold a PBKDF2-SHA512
// derivation; the plaintext is never stored.
type Staff struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Username string `db:"username" json:"username"`
	Role     string `db:"role" json:"role"`
	BranchID int64  `db:"branch_id" json:"branchId"`

	PasswordHash string `db:"password_hash" json:"-"`
	Salt         string `db:"salt" json:"-"`

	Active bool `db:"active" json:"active"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks field-level invariants.
func (s *Staff) Validate(ctx context.Context) error {
	if strings.TrimSpace(s.Name) == "" {
		return apperror.NewValidation("staff name is required").
			WithDetail("field", "name")
	}
	if strings.TrimSpace(s.Username) == "" {
		return apperror.NewValidation("username is required").
			WithDetail("field", "username")
	}
	switch s.Role {
	case appctx.RoleAdmin, appctx.RoleManager, appctx.RoleCashier:
	default:
		return apperror.NewValidation("invalid staff role").
			WithDetail("field", "role").WithDetail("value", s.Role)
	}
	return nil
}

// Repository defines persistence operations for staff accounts.
type Repository interface {
	Create(ctx context.Context, s *Staff) error
	Update(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id int64) (*Staff, error)
	GetByUsername(ctx context.Context, username string) (*Staff, error)
	List(ctx context.Context) ([]*Staff, error)
	Deactivate(ctx context.Context, id int64) error
}
