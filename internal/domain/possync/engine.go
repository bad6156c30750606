package possync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/reports"
	"github.com/Senanu-web/bskal-enterprise/pkg/logger"
)

// Engine applies client change batches and assembles snapshots.
//
// Batches are applied strictly in list order, one change at a time, each in
// its own transaction: a later change may depend on an externalId created
// by an earlier one, and one change's failure must never abort its
// siblings.
type Engine struct {
	orders  *orders.Service
	catalog *catalog.Service
	reports *reports.Service
	now     func() time.Time
}

// NewEngine creates a sync engine.
func NewEngine(orderSvc *orders.Service, catalogSvc *catalog.Service, reportSvc *reports.Service) *Engine {
	return &Engine{
		orders:  orderSvc,
		catalog: catalogSvc,
		reports: reportSvc,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the engine clock. Tests only.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Sync applies the batch and returns per-change statuses plus a snapshot of
// everything updated at or after the since cursor.
func (e *Engine) Sync(ctx context.Context, req Request) (*Response, error) {
	applied := e.ApplyBatch(ctx, req.Changes)

	// ServerTime is captured before the snapshot queries so a mutation
	// landing between them is picked up again by the next sync rather than
	// lost in the cursor gap.
	serverTime := e.now()

	var since time.Time
	if req.Since != nil {
		since = *req.Since
	}

	snapshot, err := e.snapshot(ctx, since)
	if err != nil {
		return nil, err
	}

	return &Response{
		OK:         true,
		ServerTime: serverTime,
		Applied:    applied,
		Snapshot:   *snapshot,
	}, nil
}

// ApplyBatch applies changes sequentially. Every change gets a result;
// failures are isolated per change.
func (e *Engine) ApplyBatch(ctx context.Context, changes []Change) []AppliedResult {
	results := make([]AppliedResult, 0, len(changes))
	for _, change := range changes {
		result := e.applyChange(ctx, change)
		if result.Status == StatusFailed {
			logger.Warn(ctx, "sync change failed",
				"change_id", change.ChangeID, "type", change.Type, "error", result.Error)
		}
		results = append(results, result)
	}
	return results
}

// applyChange dispatches one change by type. Unrecognized types are
// reported as skipped with an explanatory error, never silently ignored.
func (e *Engine) applyChange(ctx context.Context, change Change) AppliedResult {
	result := AppliedResult{ChangeID: change.ChangeID, Type: change.Type}

	switch change.Type {
	case ChangeOrderCreate:
		e.applyOrderCreate(ctx, change, &result)
	case ChangeOrderStatus:
		e.applyOrderStatus(ctx, change, &result)
	case ChangeOrderReturn:
		e.applyOrderReturn(ctx, change, &result)
	case ChangeProductUpdate:
		e.applyProductUpdate(ctx, change, &result)
	case ChangeStockAdjust:
		e.applyStockAdjust(ctx, change, &result)
	default:
		result.Status = StatusSkipped
		result.Error = fmt.Sprintf("unrecognized change type %q", change.Type)
	}

	return result
}

// applyOrderCreate replays are idempotent: an existing (source, externalId)
// match returns the stored order with status ok.
func (e *Engine) applyOrderCreate(ctx context.Context, change Change, result *AppliedResult) {
	var input orders.CreateInput
	if err := json.Unmarshal(change.Payload, &input); err != nil {
		result.Status = StatusFailed
		result.Error = fmt.Sprintf("malformed order payload: %v", err)
		return
	}
	if input.Source == "" {
		input.Source = orders.SourcePOS
	}

	order, _, err := e.orders.CreateIdempotent(ctx, input)
	if err != nil {
		result.Status = StatusFailed
		result.Error = errMessage(err)
		return
	}
	result.Status = StatusOK
	result.Data = order
}

func (e *Engine) applyOrderStatus(ctx context.Context, change Change, result *AppliedResult) {
	var payload orderRefPayload
	if err := json.Unmarshal(change.Payload, &payload); err != nil {
		result.Status = StatusFailed
		result.Error = fmt.Sprintf("malformed status payload: %v", err)
		return
	}

	order, err := e.orders.ChangeStatus(ctx, orders.Ref{
		ID:         payload.ID,
		Source:     payload.Source,
		ExternalID: payload.ExternalID,
	}, orders.Status(payload.Status))
	if err != nil {
		result.Status = StatusFailed
		result.Error = errMessage(err)
		return
	}
	result.Status = StatusOK
	result.Data = order
}

func (e *Engine) applyOrderReturn(ctx context.Context, change Change, result *AppliedResult) {
	var payload orderRefPayload
	if err := json.Unmarshal(change.Payload, &payload); err != nil {
		result.Status = StatusFailed
		result.Error = fmt.Sprintf("malformed return payload: %v", err)
		return
	}

	order, err := e.orders.ChangeStatus(ctx, orders.Ref{
		ID:         payload.ID,
		Source:     payload.Source,
		ExternalID: payload.ExternalID,
	}, orders.StatusReturned)
	if err != nil {
		result.Status = StatusFailed
		result.Error = errMessage(err)
		return
	}
	result.Status = StatusOK
	result.Data = order
}

// applyProductUpdate resolves concurrent edits by last writer wins: a
// payload whose updatedAt is strictly earlier than the stored clock is
// accepted but skipped, so an offline device cannot clobber a newer edit.
func (e *Engine) applyProductUpdate(ctx context.Context, change Change, result *AppliedResult) {
	var product catalog.Product
	if err := json.Unmarshal(change.Payload, &product); err != nil {
		result.Status = StatusFailed
		result.Error = fmt.Sprintf("malformed product payload: %v", err)
		return
	}
	if product.ID <= 0 {
		result.Status = StatusFailed
		result.Error = "product payload missing id"
		return
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = e.now()
	}

	applied, err := e.catalog.ApplyExternalUpdate(ctx, &product)
	if err != nil {
		result.Status = StatusFailed
		result.Error = errMessage(err)
		return
	}
	if !applied {
		result.Status = StatusSkipped
		result.Error = "superseded by a newer edit"
		return
	}
	result.Status = StatusOK
	result.Data = &product
}

func (e *Engine) applyStockAdjust(ctx context.Context, change Change, result *AppliedResult) {
	var payload stockAdjustPayload
	if err := json.Unmarshal(change.Payload, &payload); err != nil {
		result.Status = StatusFailed
		result.Error = fmt.Sprintf("malformed stock payload: %v", err)
		return
	}

	newStock, err := e.catalog.AdjustStock(ctx, payload.ProductID, payload.Amount)
	if err != nil {
		result.Status = StatusFailed
		result.Error = errMessage(err)
		return
	}
	result.Status = StatusOK
	result.Data = map[string]any{"productId": payload.ProductID, "stock": newStock}
}

// snapshot gathers products/orders updated at or after since, plus reports.
func (e *Engine) snapshot(ctx context.Context, since time.Time) (*Snapshot, error) {
	products, err := e.catalog.ListUpdatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("snapshot products: %w", err)
	}
	orderList, err := e.orders.ListUpdatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("snapshot orders: %w", err)
	}
	overview, err := e.reports.Overview(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("snapshot reports: %w", err)
	}

	return &Snapshot{
		Products: products,
		Orders:   orderList,
		Reports:  overview,
	}, nil
}

// errMessage keeps structured error messages human-readable for the POS
// failed-changes list.
func errMessage(err error) string {
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
