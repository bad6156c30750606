// Package memory provides an in-memory implementation of every repository,
// used by unit tests and the standalone dev mode. It mirrors the Postgres
// repositories' semantics, including the guarded stock decrement and the
// last-writer-wins product update.
package memory

import (
	"context"
	"sync"
	"time"

	appctx "github.com/Senanu-web/bskal-enterprise/internal/core/context"
	"github.com/Senanu-web/bskal-enterprise/internal/core/tx"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/audit"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/branches"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/shifts"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/staff"
)

// Store holds all in-memory state behind one mutex.
type Store struct {
	mu sync.RWMutex

	products      map[int64]*catalog.Product
	nextProductID int64

	orders      map[int64]*orders.Order
	nextOrderID int64

	shifts         map[int64]*shifts.Shift
	nextShiftID    int64
	movements      map[int64][]*shifts.CashMovement
	nextMovementID int64

	staff       map[int64]*staff.Staff
	nextStaffID int64

	branches     map[int64]*branches.Branch
	nextBranchID int64

	auditLog []audit.Logged
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		products:  make(map[int64]*catalog.Product),
		orders:    make(map[int64]*orders.Order),
		shifts:    make(map[int64]*shifts.Shift),
		movements: make(map[int64][]*shifts.CashMovement),
		staff:     make(map[int64]*staff.Staff),
		branches:  make(map[int64]*branches.Branch),
	}
}

// Products returns the catalog repository view.
func (s *Store) Products() catalog.Repository { return &productRepo{s: s} }

// Orders returns the order repository view.
func (s *Store) Orders() orders.Repository { return &orderRepo{s: s} }

// Shifts returns the shift repository view.
func (s *Store) Shifts() shifts.Repository { return &shiftRepo{s: s} }

// Staff returns the staff repository view.
func (s *Store) Staff() staff.Repository { return &staffRepo{s: s} }

// Branches returns the branch repository view.
func (s *Store) Branches() branches.Repository { return &branchRepo{s: s} }

// Audit returns an in-memory audit recorder.
func (s *Store) Audit() audit.Recorder { return &auditRecorder{s: s} }

// AuditLog returns the audit read view for the admin API.
func (s *Store) AuditLog() audit.Reader { return &auditRecorder{s: s} }

// AuditEntries returns recorded audit entries. Tests only.
func (s *Store) AuditEntries() []audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Entry, len(s.auditLog))
	for i, l := range s.auditLog {
		out[i] = l.Entry
	}
	return out
}

// TxManager is a pass-through transaction manager for the memory store.
// Mutations are individually atomic under the store mutex; there is no
// rollback, so a failed function may leave earlier writes in place. The
// repositories are written to validate before mutating, which keeps the
// observable behavior aligned with the Postgres implementation.
type TxManager struct{}

var _ tx.Manager = TxManager{}

// RunInTransaction executes fn directly.
func (TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ReadOnly executes fn directly.
func (TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type auditRecorder struct {
	s *Store
}

func (r *auditRecorder) Record(ctx context.Context, entry audit.Entry) error {
	if staff := appctx.GetStaff(ctx); staff != nil {
		if entry.StaffID == 0 {
			entry.StaffID = staff.StaffID
		}
		if entry.BranchID == 0 {
			entry.BranchID = staff.BranchID
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.auditLog = append(r.s.auditLog, audit.Logged{Entry: entry, CreatedAt: time.Now().UTC()})
	return nil
}

func (r *auditRecorder) Recent(ctx context.Context, limit int) ([]audit.Logged, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if limit <= 0 || limit > len(r.s.auditLog) {
		limit = len(r.s.auditLog)
	}
	out := make([]audit.Logged, 0, limit)
	for i := len(r.s.auditLog) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.s.auditLog[i])
	}
	return out, nil
}
