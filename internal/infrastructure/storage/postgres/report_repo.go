package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/Senanu-web/bskal-enterprise/internal/domain/reports"
)

// ReportRepo is the PostgreSQL implementation of reports.Repository.
// Every query excludes cancelled and returned orders from sales figures;
// the aggregate shapes mirror the in-memory implementation.
type ReportRepo struct {
	tx *TxManager
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a report repository.
func NewReportRepo(tx *TxManager) *ReportRepo {
	return &ReportRepo{tx: tx}
}

// salesStatusFilter excludes orders that do not count as revenue.
const salesStatusFilter = "o.status NOT IN ('Cancelled', 'Returned')"

func (r *ReportRepo) ProfitLoss(ctx context.Context, branchID int64, from, to time.Time) (reports.ProfitLoss, error) {
	sql := `
		SELECT
			COALESCE(SUM(o.total), 0) AS revenue,
			COALESCE((
				SELECT SUM(p.cost * (i.qty::numeric / 10000))
				FROM order_items i
				JOIN orders o2 ON o2.id = i.order_id
				JOIN products p ON p.id = i.product_id
				WHERE o2.status NOT IN ('Cancelled', 'Returned')
				  AND o2.created_at >= $1 AND o2.created_at <= $2
				  AND ($3 = 0 OR o2.branch_id = $3)
			), 0) AS cost
		FROM orders o
		WHERE ` + salesStatusFilter + `
		  AND o.created_at >= $1 AND o.created_at <= $2
		  AND ($3 = 0 OR o.branch_id = $3)`

	var pl reports.ProfitLoss
	err := r.tx.GetQuerier(ctx).
		QueryRow(ctx, sql, from, to, branchID).
		Scan(&pl.Revenue, &pl.Cost)
	if err != nil {
		return reports.ProfitLoss{}, fmt.Errorf("profit/loss: %w", err)
	}
	pl.Profit = pl.Revenue.Sub(pl.Cost)
	return pl, nil
}

func (r *ReportRepo) WeeklySales(ctx context.Context, branchID int64, until time.Time) ([]reports.WeeklySalesPoint, error) {
	// generate_series fills days with no orders, so the series always has
	// exactly seven points.
	sql := `
		SELECT
			to_char(d.day, 'YYYY-MM-DD') AS day,
			COALESCE(COUNT(o.id), 0)::int AS orders,
			COALESCE(SUM(o.total), 0) AS total
		FROM generate_series(
			date_trunc('day', $1::timestamptz) - interval '6 days',
			date_trunc('day', $1::timestamptz),
			interval '1 day'
		) AS d(day)
		LEFT JOIN orders o
			ON date_trunc('day', o.created_at) = d.day
			AND ` + salesStatusFilter + `
			AND ($2 = 0 OR o.branch_id = $2)
		GROUP BY d.day
		ORDER BY d.day ASC`

	var points []reports.WeeklySalesPoint
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &points, sql, until, branchID); err != nil {
		return nil, fmt.Errorf("weekly sales: %w", err)
	}
	return points, nil
}

func (r *ReportRepo) LoyaltyCustomers(ctx context.Context) ([]reports.LoyaltyCustomer, error) {
	// Phone normalization must match orders.NormalizePhone (strip whitespace).
	sql := `
		SELECT
			regexp_replace(o.customer_phone, '\s', '', 'g') AS phone,
			MIN(o.customer_name) AS name,
			COUNT(*)::int AS orders,
			COALESCE(SUM(o.total), 0) AS spend
		FROM orders o
		WHERE ` + salesStatusFilter + `
		  AND regexp_replace(o.customer_phone, '\s', '', 'g') <> ''
		GROUP BY 1
		ORDER BY orders DESC`

	var customers []reports.LoyaltyCustomer
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &customers, sql); err != nil {
		return nil, fmt.Errorf("loyalty customers: %w", err)
	}
	for i := range customers {
		customers[i].DiscountPct = reports.DiscountPctFor(customers[i].Orders)
	}
	return customers, nil
}

func (r *ReportRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]reports.TopProduct, error) {
	sql := `
		SELECT
			i.product_id,
			MIN(i.name) AS name,
			SUM(i.qty)::bigint AS qty_sold,
			COALESCE(SUM(i.price_at * (i.qty::numeric / 10000)), 0) AS revenue
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE ` + salesStatusFilter + `
		  AND o.created_at >= $1 AND o.created_at <= $2
		GROUP BY i.product_id
		ORDER BY qty_sold DESC
		LIMIT $3`

	var items []reports.TopProduct
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, from, to, limit); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return items, nil
}

func (r *ReportRepo) StaffPerformance(ctx context.Context, from, to time.Time) ([]reports.StaffPerformance, error) {
	sql := `
		SELECT
			o.staff_name,
			COUNT(*)::int AS orders,
			COALESCE(SUM(o.total), 0) AS revenue
		FROM orders o
		WHERE ` + salesStatusFilter + `
		  AND o.staff_name <> ''
		  AND o.created_at >= $1 AND o.created_at <= $2
		GROUP BY o.staff_name
		ORDER BY revenue DESC`

	var items []reports.StaffPerformance
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, from, to); err != nil {
		return nil, fmt.Errorf("staff performance: %w", err)
	}
	return items, nil
}
