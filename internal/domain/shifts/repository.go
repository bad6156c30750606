package shifts

import (
	"context"

	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
)

// MovementTotals sums a shift's cash movements by type.
type MovementTotals struct {
	CashIn  types.Money
	CashOut types.Money
}

// ListFilter narrows List results.
type ListFilter struct {
	StaffID  int64
	BranchID int64
	Status   ShiftStatus
	Limit    int
	Offset   int
}

// Repository defines persistence operations for shifts and cash movements.
type Repository interface {
	Create(ctx context.Context, shift *Shift) error
	GetByID(ctx context.Context, id int64) (*Shift, error)

	// GetOpenByStaff returns the staff member's open shift, or NotFound.
	GetOpenByStaff(ctx context.Context, staffID int64) (*Shift, error)

	List(ctx context.Context, filter ListFilter) ([]*Shift, error)

	// Close writes the frozen reconciliation fields and flips status.
	Close(ctx context.Context, shift *Shift) error

	AddMovement(ctx context.Context, m *CashMovement) error
	ListMovements(ctx context.Context, shiftID int64) ([]*CashMovement, error)
	MovementTotals(ctx context.Context, shiftID int64) (MovementTotals, error)
}
