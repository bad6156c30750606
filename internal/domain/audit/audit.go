// Package audit defines the audit trail contract used by domain services.
// Entries are append-only and never read back by business logic, only by
// operators through the admin API.
package audit

import (
	"context"
	"time"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionStatusChange Action = "status_change"
	ActionSyncApply    Action = "sync_apply"
	ActionShiftOpen    Action = "shift_open"
	ActionShiftClose   Action = "shift_close"
	ActionImport       Action = "import"
)

// Entry is a single audit record. StaffID/BranchID default to the
// authenticated staff member from context when left zero.
type Entry struct {
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityId"`
	Action     Action         `json:"action"`
	StaffID    int64          `json:"staffId"`
	BranchID   int64          `json:"branchId"`
	Changes    map[string]any `json:"changes,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Logged is a persisted entry as read back by operators.
type Logged struct {
	Entry
	CreatedAt time.Time `json:"createdAt"`
}

// Reader exposes the audit trail to the admin API, newest first.
type Reader interface {
	Recent(ctx context.Context, limit int) ([]Logged, error)
}

// NopRecorder discards all entries. Used in tests and the POS agent.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) error { return nil }
