package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/staff"
)

// StaffRepo is the PostgreSQL implementation of staff.Repository.
type StaffRepo struct {
	tx *TxManager
}

var _ staff.Repository = (*StaffRepo)(nil)

var staffCols = ExtractDBColumns[staff.Staff]()

// NewStaffRepo creates a staff repository.
func NewStaffRepo(tx *TxManager) *StaffRepo {
	return &StaffRepo{tx: tx}
}

func (r *StaffRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *StaffRepo) Create(ctx context.Context, s *staff.Staff) error {
	data := StructToMap(s)
	delete(data, "id")

	sql, args, err := r.builder().
		Insert("staff").
		SetMap(data).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&s.ID); err != nil {
		if IsUniqueViolation(err) {
			return apperror.NewDuplicate("staff", "username", s.Username)
		}
		return fmt.Errorf("insert staff: %w", err)
	}
	return nil
}

func (r *StaffRepo) Update(ctx context.Context, s *staff.Staff) error {
	data := StructToMap(s)
	delete(data, "id")
	delete(data, "created_at")

	sql, args, err := r.builder().
		Update("staff").
		SetMap(data).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("staff", s.ID)
	}
	return nil
}

func (r *StaffRepo) GetByID(ctx context.Context, id int64) (*staff.Staff, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id}, id)
}

func (r *StaffRepo) GetByUsername(ctx context.Context, username string) (*staff.Staff, error) {
	return r.findOne(ctx, squirrel.Eq{"username": username}, username)
}

func (r *StaffRepo) findOne(ctx context.Context, cond squirrel.Eq, key any) (*staff.Staff, error) {
	sql, args, err := r.builder().
		Select(staffCols...).
		From("staff").
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s staff.Staff
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("staff", key)
		}
		return nil, fmt.Errorf("get staff: %w", err)
	}
	return &s, nil
}

func (r *StaffRepo) List(ctx context.Context) ([]*staff.Staff, error) {
	sql, args, err := r.builder().
		Select(staffCols...).
		From("staff").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*staff.Staff
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return items, nil
}

func (r *StaffRepo) Deactivate(ctx context.Context, id int64) error {
	sql, args, err := r.builder().
		Update("staff").
		Set("active", false).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("deactivate staff: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("staff", id)
	}
	return nil
}
