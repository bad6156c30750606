package shifts

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	appctx "github.com/Senanu-web/bskal-enterprise/internal/core/context"
	"github.com/Senanu-web/bskal-enterprise/internal/core/tx"
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/audit"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
	"github.com/Senanu-web/bskal-enterprise/pkg/logger"
)

// Service provides business logic for shifts and cash reconciliation.
// Order totals come from the order repository so the reconciliation always
// reflects committed order data.
type Service struct {
	repo      Repository
	orders    orders.Repository
	txManager tx.Manager
	audit     audit.Recorder
	now       func() time.Time
}

// NewService creates a new shift service.
func NewService(repo Repository, orderRepo orders.Repository, txManager tx.Manager, recorder audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		orders:    orderRepo,
		txManager: txManager,
		audit:     recorder,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Open starts a shift for a staff member. A staff member can have only one
// open shift at a time.
func (s *Service) Open(ctx context.Context, staffID, branchID int64, openingCash types.Money) (*Shift, error) {
	shift := &Shift{
		StaffID:     staffID,
		BranchID:    branchID,
		OpenedAt:    s.now(),
		OpeningCash: openingCash,
		Status:      StatusOpen,
	}
	if err := shift.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetOpenByStaff(ctx, staffID)
		if err == nil && existing != nil {
			return apperror.NewBusinessRule(apperror.CodeShiftOpen,
				"staff member already has an open shift").
				WithDetail("shift_id", existing.ID)
		}
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}

		if err := s.repo.Create(ctx, shift); err != nil {
			return fmt.Errorf("open shift: %w", err)
		}
		return s.audit.Record(ctx, audit.Entry{
			EntityType: "shift",
			EntityID:   strconv.FormatInt(shift.ID, 10),
			Action:     audit.ActionShiftOpen,
			Changes:    map[string]any{"opening_cash": openingCash},
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "shift opened", "shift_id", shift.ID, "opening_cash", openingCash)
	return shift, nil
}

// RecordMovement appends a cash in/out movement to an open shift.
func (s *Service) RecordMovement(ctx context.Context, shiftID int64, mtype MovementType, amount types.Money, reason string) (*CashMovement, error) {
	m := &CashMovement{
		ShiftID:   shiftID,
		StaffID:   appctx.GetStaffID(ctx),
		Type:      mtype,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: s.now(),
	}
	if err := m.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		shift, err := s.repo.GetByID(ctx, shiftID)
		if err != nil {
			return err
		}
		if !shift.IsOpen() {
			return apperror.NewBusinessRule(apperror.CodeShiftClosed,
				"cannot record cash movement on a closed shift")
		}
		if err := s.repo.AddMovement(ctx, m); err != nil {
			return fmt.Errorf("record movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Preview computes the live reconciliation for an open shift without
// closing it (the "X report").
func (s *Service) Preview(ctx context.Context, shiftID int64) (*Reconciliation, error) {
	shift, err := s.repo.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	end := s.now()
	if shift.ClosedAt != nil {
		end = *shift.ClosedAt
	}
	rec, err := s.reconcile(ctx, shift, shift.ClosingCash, end)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Close closes a shift one-way with a frozen reconciliation snapshot.
// Only the owning staff member or a manager may close a shift.
func (s *Service) Close(ctx context.Context, shiftID int64, closingCash types.Money) (*Shift, error) {
	if closingCash.IsNegative() {
		return nil, apperror.NewValidation("closing cash cannot be negative").
			WithDetail("field", "closingCash")
	}

	var shift *Shift
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		shift, err = s.repo.GetByID(ctx, shiftID)
		if err != nil {
			return err
		}
		if !shift.IsOpen() {
			return apperror.NewBusinessRule(apperror.CodeShiftClosed,
				"shift is already closed")
		}
		if shift.StaffID != appctx.GetStaffID(ctx) && !appctx.IsManager(ctx) {
			return apperror.NewForbidden("only the shift owner or a manager may close a shift")
		}

		closedAt := s.now()
		rec, err := s.reconcile(ctx, shift, closingCash, closedAt)
		if err != nil {
			return err
		}

		shift.ClosedAt = &closedAt
		shift.ClosingCash = closingCash
		shift.ExpectedCash = rec.ExpectedCash
		shift.Variance = rec.Variance
		shift.Status = StatusClosed

		if err := s.repo.Close(ctx, shift); err != nil {
			return fmt.Errorf("close shift: %w", err)
		}
		return s.audit.Record(ctx, audit.Entry{
			EntityType: "shift",
			EntityID:   strconv.FormatInt(shift.ID, 10),
			Action:     audit.ActionShiftClose,
			Changes: map[string]any{
				"closing_cash":  closingCash,
				"expected_cash": rec.ExpectedCash,
				"variance":      rec.Variance,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "shift closed",
		"shift_id", shift.ID, "expected_cash", shift.ExpectedCash, "variance", shift.Variance)
	return shift, nil
}

// reconcile computes expectedCash and variance for the shift window ending
// at end.
func (s *Service) reconcile(ctx context.Context, shift *Shift, closingCash types.Money, end time.Time) (*Reconciliation, error) {
	totals, err := s.orders.CashTotalsBetween(ctx, shift.BranchID, shift.OpenedAt, end)
	if err != nil {
		return nil, fmt.Errorf("cash totals: %w", err)
	}
	movements, err := s.repo.MovementTotals(ctx, shift.ID)
	if err != nil {
		return nil, fmt.Errorf("movement totals: %w", err)
	}

	expected := ComputeExpected(shift.OpeningCash, totals.CashSales, totals.CashRefunds, movements.CashIn, movements.CashOut)
	return &Reconciliation{
		CashSales:    totals.CashSales,
		CashRefunds:  totals.CashRefunds,
		CashIn:       movements.CashIn,
		CashOut:      movements.CashOut,
		ExpectedCash: expected,
		Variance:     closingCash.Sub(expected),
	}, nil
}

// Get retrieves a shift with its movements.
func (s *Service) Get(ctx context.Context, id int64) (*Shift, []*CashMovement, error) {
	shift, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	movements, err := s.repo.ListMovements(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return shift, movements, nil
}

// Current returns the caller's open shift, or NotFound.
func (s *Service) Current(ctx context.Context) (*Shift, error) {
	return s.repo.GetOpenByStaff(ctx, appctx.GetStaffID(ctx))
}

// List retrieves shifts matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Shift, error) {
	return s.repo.List(ctx, filter)
}
