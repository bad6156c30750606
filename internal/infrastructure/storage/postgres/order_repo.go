package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
)

// OrderRepo is the PostgreSQL implementation of orders.Repository.
// Orders span two tables: the order row and its item rows.
type OrderRepo struct {
	tx      *TxManager
	batcher *BatchInserter
}

var _ orders.Repository = (*OrderRepo)(nil)

// NewOrderRepo creates an order repository.
func NewOrderRepo(tx *TxManager) *OrderRepo {
	return &OrderRepo{tx: tx, batcher: NewBatchInserter(tx)}
}

// orderRow is the flat scan target for the orders table. Nested value
// groups on orders.Order (delivery, payment, customer, location) are
// flattened here and folded back in toOrder.
type orderRow struct {
	ID         int64   `db:"id"`
	Source     string  `db:"source"`
	ExternalID *string `db:"external_id"`

	Total  types.Money   `db:"total"`
	Status orders.Status `db:"status"`

	DeliveryMethod  string `db:"delivery_method"`
	DeliveryAddress string `db:"delivery_address"`

	PaymentMethod    string `db:"payment_method"`
	PaymentProvider  string `db:"payment_provider"`
	PaymentReference string `db:"payment_reference"`

	CustomerName  string `db:"customer_name"`
	CustomerPhone string `db:"customer_phone"`

	StaffName string `db:"staff_name"`
	StaffRole string `db:"staff_role"`

	BranchID   int64  `db:"branch_id"`
	BranchName string `db:"branch_name"`

	TrackingToken string `db:"tracking_token"`

	LocationLat      *float64   `db:"location_lat"`
	LocationLng      *float64   `db:"location_lng"`
	LocationAccuracy *float64   `db:"location_accuracy"`
	LocationAt       *time.Time `db:"location_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

var orderCols = ExtractDBColumns[orderRow]()

var orderItemCols = []string{"order_id", "product_id", "name", "qty", "price_at"}

func (row *orderRow) toOrder() *orders.Order {
	o := &orders.Order{
		ID:            row.ID,
		Source:        row.Source,
		ExternalID:    row.ExternalID,
		Total:         row.Total,
		Status:        row.Status,
		Delivery:      orders.Delivery{Method: row.DeliveryMethod, Address: row.DeliveryAddress},
		Payment:       orders.Payment{Method: row.PaymentMethod, Provider: row.PaymentProvider, Reference: row.PaymentReference},
		Customer:      orders.Customer{Name: row.CustomerName, Phone: row.CustomerPhone},
		StaffName:     row.StaffName,
		StaffRole:     row.StaffRole,
		BranchID:      row.BranchID,
		BranchName:    row.BranchName,
		TrackingToken: row.TrackingToken,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.LocationLat != nil && row.LocationLng != nil && row.LocationAt != nil {
		accuracy := 0.0
		if row.LocationAccuracy != nil {
			accuracy = *row.LocationAccuracy
		}
		o.Location = &orders.Location{
			Lat:       *row.LocationLat,
			Lng:       *row.LocationLng,
			Accuracy:  accuracy,
			Timestamp: *row.LocationAt,
		}
	}
	return o
}

func (r *OrderRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *OrderRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(orderCols...).From("orders")
}

// Create inserts the order row and its items. The unique index on
// (source, external_id) is the database-level idempotency backstop behind
// the service's replay check.
func (r *OrderRepo) Create(ctx context.Context, o *orders.Order) error {
	data := map[string]any{
		"source":            o.Source,
		"external_id":       o.ExternalID,
		"total":             o.Total,
		"status":            o.Status,
		"delivery_method":   o.Delivery.Method,
		"delivery_address":  o.Delivery.Address,
		"payment_method":    o.Payment.Method,
		"payment_provider":  o.Payment.Provider,
		"payment_reference": o.Payment.Reference,
		"customer_name":     o.Customer.Name,
		"customer_phone":    o.Customer.Phone,
		"staff_name":        o.StaffName,
		"staff_role":        o.StaffRole,
		"branch_id":         o.BranchID,
		"branch_name":       o.BranchName,
		"tracking_token":    o.TrackingToken,
		"created_at":        o.CreatedAt,
		"updated_at":        o.UpdatedAt,
	}

	sql, args, err := r.builder().
		Insert("orders").
		SetMap(data).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.tx.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&o.ID); err != nil {
		if IsUniqueViolation(err) {
			return apperror.NewDuplicate("order", "external_id", deref(o.ExternalID))
		}
		return fmt.Errorf("insert order: %w", err)
	}

	rows := make([][]any, 0, len(o.Items))
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		item := o.Items[i]
		rows = append(rows, []any{item.OrderID, item.ProductID, item.Name, item.Qty, item.PriceAt})
	}
	if _, err := r.batcher.CopyFromSlice(ctx, "order_items", orderItemCols, rows); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*orders.Order, error) {
	return r.findOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": id}), id)
}

func (r *OrderRepo) GetBySourceExternalID(ctx context.Context, source, externalID string) (*orders.Order, error) {
	return r.findOne(ctx, r.baseSelect().
		Where(squirrel.Eq{"source": source, "external_id": externalID}), externalID)
}

func (r *OrderRepo) GetByTrackingToken(ctx context.Context, token string) (*orders.Order, error) {
	return r.findOne(ctx, r.baseSelect().Where(squirrel.Eq{"tracking_token": token}), "token")
}

func (r *OrderRepo) findOne(ctx context.Context, q squirrel.SelectBuilder, key any) (*orders.Order, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row orderRow
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", key)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	o := row.toOrder()
	if err := r.loadItems(ctx, []*orders.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) List(ctx context.Context, filter orders.ListFilter) ([]*orders.Order, error) {
	q := r.baseSelect().OrderBy("created_at DESC")

	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Source != "" {
		q = q.Where(squirrel.Eq{"source": filter.Source})
	}
	if filter.BranchID != 0 {
		q = q.Where(squirrel.Eq{"branch_id": filter.BranchID})
	}
	if !filter.From.IsZero() {
		q = q.Where(squirrel.GtOrEq{"created_at": filter.From})
	}
	if !filter.To.IsZero() {
		q = q.Where(squirrel.LtOrEq{"created_at": filter.To})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	return r.selectOrders(ctx, q)
}

func (r *OrderRepo) ListUpdatedSince(ctx context.Context, since time.Time) ([]*orders.Order, error) {
	q := r.baseSelect().OrderBy("id ASC")
	if !since.IsZero() {
		q = q.Where(squirrel.GtOrEq{"updated_at": since})
	}
	return r.selectOrders(ctx, q)
}

func (r *OrderRepo) selectOrders(ctx context.Context, q squirrel.SelectBuilder) ([]*orders.Order, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []*orderRow
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	out := make([]*orders.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toOrder())
	}
	if err := r.loadItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadItems attaches item rows to the given orders in one query.
func (r *OrderRepo) loadItems(ctx context.Context, list []*orders.Order) error {
	if len(list) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(list))
	byID := make(map[int64]*orders.Order, len(list))
	for _, o := range list {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	sql, args, err := r.builder().
		Select(orderItemCols...).
		From("order_items").
		Where(squirrel.Eq{"order_id": ids}).
		OrderBy("order_id ASC, product_id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	var items []orders.OrderItem
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &items, sql, args...); err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	for _, item := range items {
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, status orders.Status, updatedAt time.Time) error {
	sql, args, err := r.builder().
		Update("orders").
		Set("status", status).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("order", id)
	}
	return nil
}

func (r *OrderRepo) SetLocation(ctx context.Context, id int64, loc orders.Location) error {
	sql, args, err := r.builder().
		Update("orders").
		Set("location_lat", loc.Lat).
		Set("location_lng", loc.Lng).
		Set("location_accuracy", loc.Accuracy).
		Set("location_at", loc.Timestamp).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set order location: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("order", id)
	}
	return nil
}

// CashTotalsBetween sums cash flow for shift reconciliation. Cancelled
// orders drop out entirely; returned orders count only as refunds.
func (r *OrderRepo) CashTotalsBetween(ctx context.Context, branchID int64, from, to time.Time) (orders.CashTotals, error) {
	sql := `
		SELECT
			COALESCE(SUM(total) FILTER (WHERE status <> $1), 0) AS cash_sales,
			COALESCE(SUM(total) FILTER (WHERE status = $1), 0) AS cash_refunds
		FROM orders
		WHERE payment_method = $2
		  AND status <> $3
		  AND created_at >= $4 AND created_at <= $5
		  AND ($6 = 0 OR branch_id = $6)`

	var totals orders.CashTotals
	err := r.tx.GetQuerier(ctx).
		QueryRow(ctx, sql,
			orders.StatusReturned, orders.PayCash, orders.StatusCancelled,
			from, to, branchID).
		Scan(&totals.CashSales, &totals.CashRefunds)
	if err != nil {
		return orders.CashTotals{}, fmt.Errorf("cash totals: %w", err)
	}
	return totals, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
