// Package possync implements the server half of the offline-first POS
// synchronization protocol: the idempotent change apply loop and the
// since-cursor snapshot.
package possync

import (
	"encoding/json"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/reports"
)

// ChangeType is the closed enum of client mutations.
type ChangeType string

const (
	ChangeOrderCreate   ChangeType = "order:create"
	ChangeOrderStatus   ChangeType = "order:status"
	ChangeOrderReturn   ChangeType = "order:return"
	ChangeProductUpdate ChangeType = "product:update"
	ChangeStockAdjust   ChangeType = "stock:adjust"
)

// Change is one queued client mutation. ChangeID is the client-generated
// network idempotency token; Payload carries enough information to
// reproduce the effect server-side.
type Change struct {
	ChangeID string          `json:"changeId"`
	Type     ChangeType      `json:"type"`
	Payload  json.RawMessage `json:"payload"`
}

// ApplyStatus is the per-change outcome.
type ApplyStatus string

const (
	// StatusOK: applied (or idempotently replayed).
	StatusOK ApplyStatus = "ok"
	// StatusFailed: rejected, kept queued client-side for operator review.
	StatusFailed ApplyStatus = "failed"
	// StatusSkipped: superseded (stale write) or unrecognized; safe to prune.
	StatusSkipped ApplyStatus = "skipped"
)

// AppliedResult reports one change's outcome back to the client.
type AppliedResult struct {
	ChangeID string      `json:"changeId"`
	Type     ChangeType  `json:"type"`
	Status   ApplyStatus `json:"status"`
	Data     any         `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// Request is the sync endpoint request body. Since is the client's cursor
// from the previous response; nil means first sync (full snapshot).
type Request struct {
	Since   *time.Time `json:"since"`
	Changes []Change   `json:"changes"`
}

// Snapshot carries everything that changed at or after the cursor, plus
// freshly computed reports.
type Snapshot struct {
	Products []*catalog.Product `json:"products"`
	Orders   []*orders.Order    `json:"orders"`
	Reports  *reports.Overview  `json:"reports"`
}

// Response is the sync endpoint response body. ServerTime is the client's
// next cursor.
type Response struct {
	OK         bool            `json:"ok"`
	ServerTime time.Time       `json:"serverTime"`
	Applied    []AppliedResult `json:"applied"`
	Snapshot   Snapshot        `json:"snapshot"`
}

// orderRefPayload resolves an order by server id or (source, externalId).
type orderRefPayload struct {
	ID         int64  `json:"id,omitempty"`
	Source     string `json:"source,omitempty"`
	ExternalID string `json:"externalId,omitempty"`
	Status     string `json:"status,omitempty"`
}

// stockAdjustPayload is a relative manual correction.
type stockAdjustPayload struct {
	ProductID int64          `json:"productId"`
	Amount    types.Quantity `json:"amount"`
}
