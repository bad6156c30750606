package dto

import (
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/shifts"
)

// OpenShiftRequest starts a register session with a counted float.
type OpenShiftRequest struct {
	BranchID    int64       `json:"branchId"`
	OpeningCash types.Money `json:"openingCash"`
}

// CashMovementRequest records a drawer in/out adjustment.
type CashMovementRequest struct {
	Type   shifts.MovementType `json:"type" binding:"required"`
	Amount types.Money         `json:"amount"`
	Reason string              `json:"reason"`
}

// CloseShiftRequest closes a shift with the counted drawer amount.
type CloseShiftRequest struct {
	ClosingCash types.Money `json:"closingCash"`
}

// ShiftSummaryResponse is a shift with its movement trail.
type ShiftSummaryResponse struct {
	Shift     *shifts.Shift          `json:"shift"`
	Movements []*shifts.CashMovement `json:"movements"`
}
