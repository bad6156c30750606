package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/branches"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/staff"
)

type staffRepo struct {
	s *Store
}

var _ staff.Repository = (*staffRepo)(nil)

func cloneStaff(m *staff.Staff) *staff.Staff {
	cp := *m
	return &cp
}

func (r *staffRepo) Create(ctx context.Context, m *staff.Staff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextStaffID++
	m.ID = r.s.nextStaffID
	r.s.staff[m.ID] = cloneStaff(m)
	return nil
}

func (r *staffRepo) Update(ctx context.Context, m *staff.Staff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.staff[m.ID]; !ok {
		return apperror.NewNotFound("staff", m.ID)
	}
	r.s.staff[m.ID] = cloneStaff(m)
	return nil
}

func (r *staffRepo) GetByID(ctx context.Context, id int64) (*staff.Staff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.staff[id]
	if !ok {
		return nil, apperror.NewNotFound("staff", id)
	}
	return cloneStaff(m), nil
}

func (r *staffRepo) GetByUsername(ctx context.Context, username string) (*staff.Staff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, m := range r.s.staff {
		if m.Username == username {
			return cloneStaff(m), nil
		}
	}
	return nil, apperror.NewNotFound("staff", username)
}

func (r *staffRepo) List(ctx context.Context) ([]*staff.Staff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*staff.Staff, 0, len(r.s.staff))
	for _, m := range r.s.staff {
		out = append(out, cloneStaff(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *staffRepo) Deactivate(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.staff[id]
	if !ok {
		return apperror.NewNotFound("staff", id)
	}
	m.Active = false
	m.UpdatedAt = time.Now().UTC()
	return nil
}

type branchRepo struct {
	s *Store
}

var _ branches.Repository = (*branchRepo)(nil)

func (r *branchRepo) Create(ctx context.Context, b *branches.Branch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextBranchID++
	b.ID = r.s.nextBranchID
	cp := *b
	r.s.branches[b.ID] = &cp
	return nil
}

func (r *branchRepo) Update(ctx context.Context, b *branches.Branch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.branches[b.ID]; !ok {
		return apperror.NewNotFound("branch", b.ID)
	}
	cp := *b
	r.s.branches[b.ID] = &cp
	return nil
}

func (r *branchRepo) GetByID(ctx context.Context, id int64) (*branches.Branch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.branches[id]
	if !ok {
		return nil, apperror.NewNotFound("branch", id)
	}
	cp := *b
	return &cp, nil
}

func (r *branchRepo) List(ctx context.Context) ([]*branches.Branch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*branches.Branch, 0, len(r.s.branches))
	for _, b := range r.s.branches {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
