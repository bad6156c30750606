package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
)

type orderRepo struct {
	s *Store
}

var _ orders.Repository = (*orderRepo)(nil)

func cloneOrder(o *orders.Order) *orders.Order {
	cp := *o
	cp.Items = make([]orders.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	if o.Location != nil {
		loc := *o.Location
		cp.Location = &loc
	}
	return &cp
}

func (r *orderRepo) Create(ctx context.Context, o *orders.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Store-level uniqueness of (source, externalId).
	if o.ExternalID != nil && *o.ExternalID != "" {
		for _, existing := range r.s.orders {
			if existing.Source == o.Source &&
				existing.ExternalID != nil && *existing.ExternalID == *o.ExternalID {
				return apperror.NewDuplicate("order", "externalId", *o.ExternalID)
			}
		}
	}

	r.s.nextOrderID++
	o.ID = r.s.nextOrderID
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	r.s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*orders.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, apperror.NewNotFound("order", id)
	}
	return cloneOrder(o), nil
}

func (r *orderRepo) GetBySourceExternalID(ctx context.Context, source, externalID string) (*orders.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, o := range r.s.orders {
		if o.Source == source && o.ExternalID != nil && *o.ExternalID == externalID {
			return cloneOrder(o), nil
		}
	}
	return nil, apperror.NewNotFound("order", externalID)
}

func (r *orderRepo) GetByTrackingToken(ctx context.Context, token string) (*orders.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if token == "" {
		return nil, apperror.NewNotFound("order", token)
	}
	for _, o := range r.s.orders {
		if o.TrackingToken == token {
			return cloneOrder(o), nil
		}
	}
	return nil, apperror.NewNotFound("order", token)
}

func (r *orderRepo) List(ctx context.Context, filter orders.ListFilter) ([]*orders.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*orders.Order
	for _, o := range r.s.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Source != "" && o.Source != filter.Source {
			continue
		}
		if filter.BranchID != 0 && o.BranchID != filter.BranchID {
			continue
		}
		if !filter.From.IsZero() && o.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && o.CreatedAt.After(filter.To) {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, filter.Offset, filter.Limit), nil
}

func (r *orderRepo) ListUpdatedSince(ctx context.Context, since time.Time) ([]*orders.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*orders.Order
	for _, o := range r.s.orders {
		if since.IsZero() || !o.UpdatedAt.Before(since) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status orders.Status, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return apperror.NewNotFound("order", id)
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	return nil
}

func (r *orderRepo) SetLocation(ctx context.Context, id int64, loc orders.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return apperror.NewNotFound("order", id)
	}
	o.Location = &loc
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *orderRepo) CashTotalsBetween(ctx context.Context, branchID int64, from, to time.Time) (orders.CashTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	totals := orders.CashTotals{
		CashSales:   types.Zero(),
		CashRefunds: types.Zero(),
	}
	for _, o := range r.s.orders {
		if o.Payment.Method != orders.PayCash {
			continue
		}
		if branchID != 0 && o.BranchID != branchID {
			continue
		}
		if o.CreatedAt.Before(from) || o.CreatedAt.After(to) {
			continue
		}
		switch o.Status {
		case orders.StatusCancelled:
			// Excluded entirely.
		case orders.StatusReturned:
			totals.CashRefunds = totals.CashRefunds.Add(o.Total)
		default:
			totals.CashSales = totals.CashSales.Add(o.Total)
		}
	}
	return totals, nil
}
