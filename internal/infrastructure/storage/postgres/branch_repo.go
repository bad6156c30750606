package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/branches"
)

// BranchRepo is the PostgreSQL implementation of branches.Repository.
type BranchRepo struct {
	tx *TxManager
}

var _ branches.Repository = (*BranchRepo)(nil)

var branchCols = ExtractDBColumns[branches.Branch]()

// NewBranchRepo creates a branch repository.
func NewBranchRepo(tx *TxManager) *BranchRepo {
	return &BranchRepo{tx: tx}
}

func (r *BranchRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BranchRepo) Create(ctx context.Context, b *branches.Branch) error {
	data := StructToMap(b)
	delete(data, "id")

	sql, args, err := r.builder().
		Insert("branches").
		SetMap(data).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&b.ID); err != nil {
		return fmt.Errorf("insert branch: %w", err)
	}
	return nil
}

func (r *BranchRepo) Update(ctx context.Context, b *branches.Branch) error {
	data := StructToMap(b)
	delete(data, "id")
	delete(data, "created_at")

	sql, args, err := r.builder().
		Update("branches").
		SetMap(data).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update branch: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("branch", b.ID)
	}
	return nil
}

func (r *BranchRepo) GetByID(ctx context.Context, id int64) (*branches.Branch, error) {
	sql, args, err := r.builder().
		Select(branchCols...).
		From("branches").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b branches.Branch
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("branch", id)
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return &b, nil
}

func (r *BranchRepo) List(ctx context.Context) ([]*branches.Branch, error) {
	sql, args, err := r.builder().
		Select(branchCols...).
		From("branches").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*branches.Branch
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return items, nil
}
