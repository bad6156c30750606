// Package shifts provides register sessions and cash reconciliation.
// A shift aggregates the branch's orders between open and close; closing
// freezes the computed reconciliation snapshot permanently.
package shifts

import (
	"context"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
)

// ShiftStatus is the shift lifecycle state.
type ShiftStatus string

const (
	StatusOpen   ShiftStatus = "open"
	StatusClosed ShiftStatus = "closed"
)

// Shift is one register session for one staff member.
// At most one open shift per staff member at a time.
type Shift struct {
	ID       int64 `db:"id" json:"id"`
	StaffID  int64 `db:"staff_id" json:"staffId"`
	BranchID int64 `db:"branch_id" json:"branchId"`

	OpenedAt time.Time  `db:"opened_at" json:"openedAt"`
	ClosedAt *time.Time `db:"closed_at" json:"closedAt,omitempty"`

	OpeningCash types.Money `db:"opening_cash" json:"openingCash"`

	// ClosingCash, ExpectedCash and Variance are frozen at close time and
	// never recomputed by later order edits.
	ClosingCash  types.Money `db:"closing_cash" json:"closingCash"`
	ExpectedCash types.Money `db:"expected_cash" json:"expectedCash"`
	Variance     types.Money `db:"variance" json:"variance"`

	Status ShiftStatus `db:"status" json:"status"`
}

// IsOpen reports whether the shift is still accepting activity.
func (s *Shift) IsOpen() bool {
	return s.Status == StatusOpen
}

// Validate checks field-level invariants on a new shift.
func (s *Shift) Validate(ctx context.Context) error {
	if s.StaffID <= 0 {
		return apperror.NewValidation("shift requires a staff member").
			WithDetail("field", "staffId")
	}
	if s.OpeningCash.IsNegative() {
		return apperror.NewValidation("opening cash cannot be negative").
			WithDetail("field", "openingCash")
	}
	return nil
}

// MovementType classifies a cash drawer movement.
type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

// CashMovement is an append-only drawer adjustment attributed to one shift.
type CashMovement struct {
	ID      int64        `db:"id" json:"id"`
	ShiftID int64        `db:"shift_id" json:"shiftId"`
	StaffID int64        `db:"staff_id" json:"staffId"`
	Type    MovementType `db:"type" json:"type"`
	Amount  types.Money  `db:"amount" json:"amount"`
	Reason  string       `db:"reason" json:"reason"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Validate checks field-level invariants on a movement.
func (m *CashMovement) Validate(ctx context.Context) error {
	if m.Type != MovementIn && m.Type != MovementOut {
		return apperror.NewValidation("movement type must be in or out").
			WithDetail("field", "type").WithDetail("value", string(m.Type))
	}
	if !m.Amount.IsPositive() {
		return apperror.NewValidation("movement amount must be positive").
			WithDetail("field", "amount")
	}
	return nil
}

// Reconciliation is the frozen financial summary computed at close.
type Reconciliation struct {
	CashSales    types.Money `json:"cashSales"`
	CashRefunds  types.Money `json:"cashRefunds"`
	CashIn       types.Money `json:"cashIn"`
	CashOut      types.Money `json:"cashOut"`
	ExpectedCash types.Money `json:"expectedCash"`
	Variance     types.Money `json:"variance"`
}

// ComputeExpected applies the reconciliation formula:
// expectedCash = openingCash + cashSales − cashRefunds + cashIn − cashOut.
func ComputeExpected(openingCash, cashSales, cashRefunds, cashIn, cashOut types.Money) types.Money {
	return openingCash.Add(cashSales).Sub(cashRefunds).Add(cashIn).Sub(cashOut)
}
