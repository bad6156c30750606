package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/reports"
)

// Reports returns the report repository view.
func (s *Store) Reports() reports.Repository { return &reportRepo{s: s} }

type reportRepo struct {
	s *Store
}

var _ reports.Repository = (*reportRepo)(nil)

// countsForRevenue reports whether an order contributes to sales figures.
func countsForRevenue(o *orders.Order) bool {
	return o.Status != orders.StatusCancelled && o.Status != orders.StatusReturned
}

func inWindow(o *orders.Order, branchID int64, from, to time.Time) bool {
	if branchID != 0 && o.BranchID != branchID {
		return false
	}
	if !from.IsZero() && o.CreatedAt.Before(from) {
		return false
	}
	if !to.IsZero() && o.CreatedAt.After(to) {
		return false
	}
	return true
}

func (r *reportRepo) ProfitLoss(ctx context.Context, branchID int64, from, to time.Time) (reports.ProfitLoss, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	pl := reports.ProfitLoss{
		Revenue: types.Zero(),
		Cost:    types.Zero(),
		Profit:  types.Zero(),
	}
	for _, o := range r.s.orders {
		if !inWindow(o, branchID, from, to) || !countsForRevenue(o) {
			continue
		}
		pl.Revenue = pl.Revenue.Add(o.Total)
		for _, item := range o.Items {
			if p, ok := r.s.products[item.ProductID]; ok {
				lineCost := p.Cost.Mul(types.NewMoney(item.Qty.Float64()))
				pl.Cost = pl.Cost.Add(lineCost)
			}
		}
	}
	pl.Profit = pl.Revenue.Sub(pl.Cost)
	return pl, nil
}

func (r *reportRepo) WeeklySales(ctx context.Context, branchID int64, until time.Time) ([]reports.WeeklySalesPoint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	start := until.AddDate(0, 0, -6).Truncate(24 * time.Hour)
	points := make([]reports.WeeklySalesPoint, 7)
	for i := range points {
		day := start.AddDate(0, 0, i)
		points[i] = reports.WeeklySalesPoint{
			Day:   day.Format("2006-01-02"),
			Total: types.Zero(),
		}
	}

	for _, o := range r.s.orders {
		if !inWindow(o, branchID, start, until) || !countsForRevenue(o) {
			continue
		}
		idx := int(o.CreatedAt.Truncate(24 * time.Hour).Sub(start).Hours() / 24)
		if idx < 0 || idx >= len(points) {
			continue
		}
		points[idx].Orders++
		points[idx].Total = points[idx].Total.Add(o.Total)
	}
	return points, nil
}

func (r *reportRepo) LoyaltyCustomers(ctx context.Context) ([]reports.LoyaltyCustomer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byPhone := make(map[string]*reports.LoyaltyCustomer)
	for _, o := range r.s.orders {
		phone := orders.NormalizePhone(o.Customer.Phone)
		if phone == "" || !countsForRevenue(o) {
			continue
		}
		c, ok := byPhone[phone]
		if !ok {
			c = &reports.LoyaltyCustomer{
				Phone: phone,
				Name:  o.Customer.Name,
				Spend: types.Zero(),
			}
			byPhone[phone] = c
		}
		c.Orders++
		c.Spend = c.Spend.Add(o.Total)
	}

	out := make([]reports.LoyaltyCustomer, 0, len(byPhone))
	for _, c := range byPhone {
		c.DiscountPct = reports.DiscountPctFor(c.Orders)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Orders > out[j].Orders })
	return out, nil
}

func (r *reportRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]reports.TopProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byProduct := make(map[int64]*reports.TopProduct)
	for _, o := range r.s.orders {
		if !inWindow(o, 0, from, to) || !countsForRevenue(o) {
			continue
		}
		for _, item := range o.Items {
			tp, ok := byProduct[item.ProductID]
			if !ok {
				tp = &reports.TopProduct{
					ProductID: item.ProductID,
					Name:      item.Name,
					Revenue:   types.Zero(),
				}
				byProduct[item.ProductID] = tp
			}
			tp.QtySold += item.Qty
			tp.Revenue = tp.Revenue.Add(item.LineTotal())
		}
	}

	out := make([]reports.TopProduct, 0, len(byProduct))
	for _, tp := range byProduct {
		out = append(out, *tp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QtySold > out[j].QtySold })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *reportRepo) StaffPerformance(ctx context.Context, from, to time.Time) ([]reports.StaffPerformance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byStaff := make(map[string]*reports.StaffPerformance)
	for _, o := range r.s.orders {
		if o.StaffName == "" || !inWindow(o, 0, from, to) || !countsForRevenue(o) {
			continue
		}
		sp, ok := byStaff[o.StaffName]
		if !ok {
			sp = &reports.StaffPerformance{
				StaffName: o.StaffName,
				Revenue:   types.Zero(),
			}
			byStaff[o.StaffName] = sp
		}
		sp.Orders++
		sp.Revenue = sp.Revenue.Add(o.Total)
	}

	out := make([]reports.StaffPerformance, 0, len(byStaff))
	for _, sp := range byStaff {
		out = append(out, *sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Revenue.GreaterThan(out[j].Revenue) })
	return out, nil
}
