package memory

import (
	"context"
	"sort"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/shifts"
)

type shiftRepo struct {
	s *Store
}

var _ shifts.Repository = (*shiftRepo)(nil)

func cloneShift(s *shifts.Shift) *shifts.Shift {
	cp := *s
	if s.ClosedAt != nil {
		t := *s.ClosedAt
		cp.ClosedAt = &t
	}
	return &cp
}

func (r *shiftRepo) Create(ctx context.Context, shift *shifts.Shift) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextShiftID++
	shift.ID = r.s.nextShiftID
	r.s.shifts[shift.ID] = cloneShift(shift)
	return nil
}

func (r *shiftRepo) GetByID(ctx context.Context, id int64) (*shifts.Shift, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	shift, ok := r.s.shifts[id]
	if !ok {
		return nil, apperror.NewNotFound("shift", id)
	}
	return cloneShift(shift), nil
}

func (r *shiftRepo) GetOpenByStaff(ctx context.Context, staffID int64) (*shifts.Shift, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, shift := range r.s.shifts {
		if shift.StaffID == staffID && shift.Status == shifts.StatusOpen {
			return cloneShift(shift), nil
		}
	}
	return nil, apperror.NewNotFound("shift", staffID)
}

func (r *shiftRepo) List(ctx context.Context, filter shifts.ListFilter) ([]*shifts.Shift, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*shifts.Shift
	for _, shift := range r.s.shifts {
		if filter.StaffID != 0 && shift.StaffID != filter.StaffID {
			continue
		}
		if filter.BranchID != 0 && shift.BranchID != filter.BranchID {
			continue
		}
		if filter.Status != "" && shift.Status != filter.Status {
			continue
		}
		out = append(out, cloneShift(shift))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, filter.Offset, filter.Limit), nil
}

func (r *shiftRepo) Close(ctx context.Context, shift *shifts.Shift) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.shifts[shift.ID]; !ok {
		return apperror.NewNotFound("shift", shift.ID)
	}
	r.s.shifts[shift.ID] = cloneShift(shift)
	return nil
}

func (r *shiftRepo) AddMovement(ctx context.Context, m *shifts.CashMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextMovementID++
	m.ID = r.s.nextMovementID
	cp := *m
	r.s.movements[m.ShiftID] = append(r.s.movements[m.ShiftID], &cp)
	return nil
}

func (r *shiftRepo) ListMovements(ctx context.Context, shiftID int64) ([]*shifts.CashMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := r.s.movements[shiftID]
	out := make([]*shifts.CashMovement, 0, len(list))
	for _, m := range list {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r *shiftRepo) MovementTotals(ctx context.Context, shiftID int64) (shifts.MovementTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	totals := shifts.MovementTotals{
		CashIn:  types.Zero(),
		CashOut: types.Zero(),
	}
	for _, m := range r.s.movements[shiftID] {
		switch m.Type {
		case shifts.MovementIn:
			totals.CashIn = totals.CashIn.Add(m.Amount)
		case shifts.MovementOut:
			totals.CashOut = totals.CashOut.Add(m.Amount)
		}
	}
	return totals, nil
}
