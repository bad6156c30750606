package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/tx"
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/audit"
	"github.com/Senanu-web/bskal-enterprise/pkg/logger"
)

// Service provides business logic for the product catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates a new catalog service.
func NewService(repo Repository, txManager tx.Manager, recorder audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		audit:     recorder,
	}
}

// Create validates and persists a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Touch()

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		return s.audit.Record(ctx, audit.Entry{
			EntityType: "product",
			EntityID:   strconv.FormatInt(p.ID, 10),
			Action:     audit.ActionCreate,
			Changes:    map[string]any{"name": p.Name, "price": p.Price, "stock": p.Stock},
		})
	})
}

// Update validates and persists changes to an existing product.
// The logical clock is stamped server-side; offline edits go through
// ApplyExternalUpdate instead.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	p.Touch()

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		return s.audit.Record(ctx, audit.Entry{
			EntityType: "product",
			EntityID:   strconv.FormatInt(p.ID, 10),
			Action:     audit.ActionUpdate,
			Changes:    map[string]any{"name": p.Name, "price": p.Price, "stock": p.Stock},
		})
	})
}

// Get retrieves a product by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByBarcode retrieves a product by barcode (POS scanner path).
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	return s.repo.GetByBarcode(ctx, barcode)
}

// List retrieves products matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	return s.repo.List(ctx, filter)
}

// ListUpdatedSince returns products changed at or after the cursor.
func (s *Service) ListUpdatedSince(ctx context.Context, since time.Time) ([]*Product, error) {
	return s.repo.ListUpdatedSince(ctx, since)
}

// AdjustStock applies a manual relative stock correction. No sufficiency
// check: this is the operator correction path, clamped at zero by the store.
func (s *Service) AdjustStock(ctx context.Context, id int64, delta types.Quantity) (types.Quantity, error) {
	var newStock types.Quantity
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		newStock, err = s.repo.AdjustStock(ctx, id, delta)
		if err != nil {
			return fmt.Errorf("adjust stock: %w", err)
		}
		return s.audit.Record(ctx, audit.Entry{
			EntityType: "product",
			EntityID:   strconv.FormatInt(id, 10),
			Action:     audit.ActionUpdate,
			Changes:    map[string]any{"stock_delta": delta, "stock": newStock},
		})
	})
	if err != nil {
		return 0, err
	}
	logger.Info(ctx, "stock adjusted", "product_id", id, "delta", delta, "stock", newStock)
	return newStock, nil
}

// ApplyExternalUpdate applies a product edit carrying its own UpdatedAt
// stamp (offline POS edit replayed through sync). Last writer wins: a write
// strictly earlier than the stored clock is not applied and reported as
// skipped, never as an error.
func (s *Service) ApplyExternalUpdate(ctx context.Context, p *Product) (applied bool, err error) {
	if err := p.Validate(ctx); err != nil {
		return false, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		applied, err = s.repo.UpdateIfNewer(ctx, p)
		if err != nil {
			return fmt.Errorf("apply external update: %w", err)
		}
		if !applied {
			return nil
		}
		return s.audit.Record(ctx, audit.Entry{
			EntityType: "product",
			EntityID:   strconv.FormatInt(p.ID, 10),
			Action:     audit.ActionSyncApply,
			Changes:    map[string]any{"name": p.Name, "price": p.Price, "stock": p.Stock},
		})
	})
	return applied, err
}
