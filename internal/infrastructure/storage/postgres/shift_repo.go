package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/shifts"
)

// ShiftRepo is the PostgreSQL implementation of shifts.Repository.
type ShiftRepo struct {
	tx *TxManager
}

var _ shifts.Repository = (*ShiftRepo)(nil)

var (
	shiftCols    = ExtractDBColumns[shifts.Shift]()
	movementCols = ExtractDBColumns[shifts.CashMovement]()
)

// NewShiftRepo creates a shift repository.
func NewShiftRepo(tx *TxManager) *ShiftRepo {
	return &ShiftRepo{tx: tx}
}

func (r *ShiftRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ShiftRepo) Create(ctx context.Context, shift *shifts.Shift) error {
	data := StructToMap(shift)
	delete(data, "id")
	delete(data, "closed_at") // nullable; set on close only

	sql, args, err := r.builder().
		Insert("shifts").
		SetMap(data).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&shift.ID); err != nil {
		return fmt.Errorf("insert shift: %w", err)
	}
	return nil
}

func (r *ShiftRepo) GetByID(ctx context.Context, id int64) (*shifts.Shift, error) {
	sql, args, err := r.builder().
		Select(shiftCols...).
		From("shifts").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var shift shifts.Shift
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &shift, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("shift", id)
		}
		return nil, fmt.Errorf("get shift: %w", err)
	}
	return &shift, nil
}

func (r *ShiftRepo) GetOpenByStaff(ctx context.Context, staffID int64) (*shifts.Shift, error) {
	sql, args, err := r.builder().
		Select(shiftCols...).
		From("shifts").
		Where(squirrel.Eq{"staff_id": staffID, "status": shifts.StatusOpen}).
		OrderBy("opened_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var shift shifts.Shift
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &shift, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("open shift", staffID)
		}
		return nil, fmt.Errorf("get open shift: %w", err)
	}
	return &shift, nil
}

func (r *ShiftRepo) List(ctx context.Context, filter shifts.ListFilter) ([]*shifts.Shift, error) {
	q := r.builder().
		Select(shiftCols...).
		From("shifts").
		OrderBy("opened_at DESC")

	if filter.StaffID != 0 {
		q = q.Where(squirrel.Eq{"staff_id": filter.StaffID})
	}
	if filter.BranchID != 0 {
		q = q.Where(squirrel.Eq{"branch_id": filter.BranchID})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*shifts.Shift
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	return items, nil
}

// Close writes the frozen reconciliation snapshot. The status guard makes
// the close one-way even under concurrent close attempts.
func (r *ShiftRepo) Close(ctx context.Context, shift *shifts.Shift) error {
	sql, args, err := r.builder().
		Update("shifts").
		Set("closed_at", shift.ClosedAt).
		Set("closing_cash", shift.ClosingCash).
		Set("expected_cash", shift.ExpectedCash).
		Set("variance", shift.Variance).
		Set("status", shifts.StatusClosed).
		Where(squirrel.Eq{"id": shift.ID, "status": shifts.StatusOpen}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("close shift: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewBusinessRule(apperror.CodeShiftClosed, "shift is already closed").
			WithDetail("shift_id", shift.ID)
	}
	return nil
}

func (r *ShiftRepo) AddMovement(ctx context.Context, m *shifts.CashMovement) error {
	data := StructToMap(m)
	delete(data, "id")

	sql, args, err := r.builder().
		Insert("cash_movements").
		SetMap(data).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&m.ID); err != nil {
		return fmt.Errorf("insert cash movement: %w", err)
	}
	return nil
}

func (r *ShiftRepo) ListMovements(ctx context.Context, shiftID int64) ([]*shifts.CashMovement, error) {
	sql, args, err := r.builder().
		Select(movementCols...).
		From("cash_movements").
		Where(squirrel.Eq{"shift_id": shiftID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*shifts.CashMovement
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list cash movements: %w", err)
	}
	return items, nil
}

func (r *ShiftRepo) MovementTotals(ctx context.Context, shiftID int64) (shifts.MovementTotals, error) {
	sql := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = $1), 0) AS cash_in,
			COALESCE(SUM(amount) FILTER (WHERE type = $2), 0) AS cash_out
		FROM cash_movements
		WHERE shift_id = $3`

	var totals shifts.MovementTotals
	err := r.tx.GetQuerier(ctx).
		QueryRow(ctx, sql, shifts.MovementIn, shifts.MovementOut, shiftID).
		Scan(&totals.CashIn, &totals.CashOut)
	if err != nil {
		return shifts.MovementTotals{}, fmt.Errorf("movement totals: %w", err)
	}
	return totals, nil
}
