package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
)

// ProductRepo is the PostgreSQL implementation of catalog.Repository.
type ProductRepo struct {
	tx *TxManager
}

var _ catalog.Repository = (*ProductRepo)(nil)

var productCols = []string{
	"id", "name", "category", "price", "cost", "stock",
	"barcode", "image_url", "created_at", "updated_at",
}

// NewProductRepo creates a product repository.
func NewProductRepo(tx *TxManager) *ProductRepo {
	return &ProductRepo{tx: tx}
}

func (r *ProductRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ProductRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(productCols...).From("products")
}

// Create inserts a product. A zero ID lets the sequence assign one;
// imports may carry explicit stable IDs.
func (r *ProductRepo) Create(ctx context.Context, p *catalog.Product) error {
	data := StructToMap(p)
	if p.ID == 0 {
		delete(data, "id")
	}

	q := r.builder().
		Insert("products").
		SetMap(data).
		Suffix("RETURNING id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.tx.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&p.ID); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update overwrites every mutable column.
func (r *ProductRepo) Update(ctx context.Context, p *catalog.Product) error {
	data := StructToMap(p)
	delete(data, "id")
	delete(data, "created_at")

	q := r.builder().
		Update("products").
		SetMap(data).
		Where(squirrel.Eq{"id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	return r.findOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": id}), id)
}

func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	return r.findOne(ctx, r.baseSelect().Where(squirrel.Eq{"barcode": barcode}), barcode)
}

func (r *ProductRepo) GetByName(ctx context.Context, name string) (*catalog.Product, error) {
	return r.findOne(ctx, r.baseSelect().Where(squirrel.Eq{"name": name}), name)
}

func (r *ProductRepo) findOne(ctx context.Context, q squirrel.SelectBuilder, key any) (*catalog.Product, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p catalog.Product
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", key)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Product, error) {
	q := r.baseSelect().OrderBy("id ASC")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.Eq{"barcode": filter.Search},
		})
	}
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
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

	var items []*catalog.Product
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

func (r *ProductRepo) ListUpdatedSince(ctx context.Context, since time.Time) ([]*catalog.Product, error) {
	q := r.baseSelect().OrderBy("id ASC")
	if !since.IsZero() {
		q = q.Where(squirrel.GtOrEq{"updated_at": since})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*catalog.Product
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list products since: %w", err)
	}
	return items, nil
}

// UpdateIfNewer applies p only when its clock is not strictly earlier than
// the stored one. The comparison runs inside the UPDATE so two concurrent
// sync batches cannot interleave between read and write.
func (r *ProductRepo) UpdateIfNewer(ctx context.Context, p *catalog.Product) (bool, error) {
	data := StructToMap(p)
	delete(data, "id")
	delete(data, "created_at")

	q := r.builder().
		Update("products").
		SetMap(data).
		Where(squirrel.Eq{"id": p.ID}).
		Where(squirrel.LtOrEq{"updated_at": p.UpdatedAt})

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("update product if newer: %w", err)
	}
	if result.RowsAffected() > 0 {
		return true, nil
	}

	// Distinguish "lost the clock comparison" from "no such product".
	exists, err := r.exists(ctx, p.ID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, apperror.NewNotFound("product", p.ID)
	}
	return false, nil
}

func (r *ProductRepo) exists(ctx context.Context, id int64) (bool, error) {
	sql, args, err := r.builder().
		Select("1").From("products").
		Where(squirrel.Eq{"id": id}).
		Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if pgxscan.NotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("product exists: %w", err)
	}
	return true, nil
}

// AdjustStock applies a relative correction, clamped at zero in SQL.
func (r *ProductRepo) AdjustStock(ctx context.Context, id int64, delta types.Quantity) (types.Quantity, error) {
	sql := `
		UPDATE products
		SET stock = GREATEST(stock + $1, 0), updated_at = $2
		WHERE id = $3
		RETURNING stock`

	var newStock types.Quantity
	err := r.tx.GetQuerier(ctx).
		QueryRow(ctx, sql, delta, time.Now().UTC(), id).
		Scan(&newStock)
	if err != nil {
		if pgxscan.NotFound(err) {
			return 0, apperror.NewNotFound("product", id)
		}
		return 0, fmt.Errorf("adjust stock: %w", err)
	}
	return newStock, nil
}

// DecrementStockGuarded takes stock for every line, or for none. The
// sufficiency check is part of each UPDATE's WHERE clause, so a concurrent
// checkout that drains the row first makes this one affect zero rows and
// fail; the caller's transaction rolls back any partial decrements.
func (r *ProductRepo) DecrementStockGuarded(ctx context.Context, lines []catalog.StockLine) error {
	querier := r.tx.GetQuerier(ctx)
	now := time.Now().UTC()

	for _, line := range lines {
		sql := `
			UPDATE products
			SET stock = stock - $1, updated_at = $2
			WHERE id = $3 AND stock >= $1`

		result, err := querier.Exec(ctx, sql, line.Qty, now, line.ProductID)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if result.RowsAffected() == 0 {
			p, err := r.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			return apperror.NewInsufficientStock(
				p.Name, line.Qty.Float64(), p.Stock.Float64())
		}
	}
	return nil
}

// RestoreStock returns each line's quantity (order cancel/return path).
// The updates go out as one batched round-trip.
func (r *ProductRepo) RestoreStock(ctx context.Context, lines []catalog.StockLine) error {
	now := time.Now().UTC()

	queries := make([]BatchQuery, 0, len(lines))
	for _, line := range lines {
		queries = append(queries, BatchQuery{
			SQL: `
				UPDATE products
				SET stock = stock + $1, updated_at = $2
				WHERE id = $3`,
			Args: []any{line.Qty, now, line.ProductID},
		})
	}

	affected, err := NewBatchExecutor(r.tx).ExecAll(ctx, queries)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	for i, n := range affected {
		if n == 0 {
			return apperror.NewNotFound("product", lines[i].ProductID)
		}
	}
	return nil
}

// ReplaceAll wipes the catalog and bulk-inserts the incoming set over the
// COPY protocol. Runs inside the import transaction, so a mid-insert
// failure restores the old catalog.
func (r *ProductRepo) ReplaceAll(ctx context.Context, products []*catalog.Product) error {
	querier := r.tx.GetQuerier(ctx)

	if _, err := querier.Exec(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}
	if len(products) == 0 {
		return nil
	}

	cols := []string{"name", "category", "price", "cost", "stock", "barcode", "image_url", "created_at", "updated_at"}
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, []any{
			p.Name, p.Category, p.Price, p.Cost, p.Stock,
			p.Barcode, p.ImageURL, p.CreatedAt, p.UpdatedAt,
		})
	}

	n, err := NewBatchInserter(r.tx).CopyFromSlice(ctx, "products", cols, rows)
	if err != nil {
		return fmt.Errorf("copy products: %w", err)
	}
	if n != int64(len(products)) {
		return fmt.Errorf("copy products: inserted %d of %d rows", n, len(products))
	}
	return nil
}
