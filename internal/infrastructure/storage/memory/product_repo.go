package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
)

type productRepo struct {
	s *Store
}

var _ catalog.Repository = (*productRepo)(nil)

func cloneProduct(p *catalog.Product) *catalog.Product {
	cp := *p
	return &cp
}

func (r *productRepo) Create(ctx context.Context, p *catalog.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.ID == 0 {
		r.s.nextProductID++
		p.ID = r.s.nextProductID
	} else if p.ID > r.s.nextProductID {
		r.s.nextProductID = p.ID
	}
	r.s.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *productRepo) Update(ctx context.Context, p *catalog.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[p.ID]; !ok {
		return apperror.NewNotFound("product", p.ID)
	}
	r.s.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, apperror.NewNotFound("product", id)
	}
	return cloneProduct(p), nil
}

func (r *productRepo) GetByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			return cloneProduct(p), nil
		}
	}
	return nil, apperror.NewNotFound("product", barcode)
}

func (r *productRepo) GetByName(ctx context.Context, name string) (*catalog.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.Name == name {
			return cloneProduct(p), nil
		}
	}
	return nil, apperror.NewNotFound("product", name)
}

func (r *productRepo) List(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*catalog.Product
	for _, p := range r.s.products {
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			barcode := ""
			if p.Barcode != nil {
				barcode = *p.Barcode
			}
			if !strings.Contains(strings.ToLower(p.Name), needle) && barcode != filter.Search {
				continue
			}
		}
		if filter.Category != "" {
			if p.Category == nil || *p.Category != filter.Category {
				continue
			}
		}
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, filter.Offset, filter.Limit), nil
}

func (r *productRepo) ListUpdatedSince(ctx context.Context, since time.Time) ([]*catalog.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*catalog.Product
	for _, p := range r.s.products {
		if since.IsZero() || !p.UpdatedAt.Before(since) {
			out = append(out, cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *productRepo) UpdateIfNewer(ctx context.Context, p *catalog.Product) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.products[p.ID]
	if !ok {
		return false, apperror.NewNotFound("product", p.ID)
	}
	if p.UpdatedAt.Before(stored.UpdatedAt) {
		return false, nil
	}
	cp := cloneProduct(p)
	cp.CreatedAt = stored.CreatedAt
	r.s.products[p.ID] = cp
	return true, nil
}

func (r *productRepo) AdjustStock(ctx context.Context, id int64, delta types.Quantity) (types.Quantity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return 0, apperror.NewNotFound("product", id)
	}
	newStock := p.Stock + delta
	if newStock.IsNegative() {
		newStock = 0
	}
	p.Stock = newStock
	p.UpdatedAt = time.Now().UTC()
	return newStock, nil
}

func (r *productRepo) DecrementStockGuarded(ctx context.Context, lines []catalog.StockLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Validate every line before touching any stock.
	for _, line := range lines {
		p, ok := r.s.products[line.ProductID]
		if !ok {
			return apperror.NewNotFound("product", line.ProductID)
		}
		if p.Stock < line.Qty {
			return apperror.NewInsufficientStock(
				p.Name, line.Qty.Float64(), p.Stock.Float64())
		}
	}

	now := time.Now().UTC()
	for _, line := range lines {
		p := r.s.products[line.ProductID]
		p.Stock -= line.Qty
		p.UpdatedAt = now
	}
	return nil
}

func (r *productRepo) RestoreStock(ctx context.Context, lines []catalog.StockLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	for _, line := range lines {
		p, ok := r.s.products[line.ProductID]
		if !ok {
			return apperror.NewNotFound("product", line.ProductID)
		}
		p.Stock += line.Qty
		p.UpdatedAt = now
	}
	return nil
}

func (r *productRepo) ReplaceAll(ctx context.Context, products []*catalog.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.products = make(map[int64]*catalog.Product, len(products))
	for _, p := range products {
		if p.ID == 0 {
			r.s.nextProductID++
			p.ID = r.s.nextProductID
		} else if p.ID > r.s.nextProductID {
			r.s.nextProductID = p.ID
		}
		r.s.products[p.ID] = cloneProduct(p)
	}
	return nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
