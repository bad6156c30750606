package catalog

import (
	"context"
	"fmt"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/audit"
	"github.com/Senanu-web/bskal-enterprise/pkg/logger"
)

// ImportMode controls how a bulk import treats existing products.
type ImportMode string

const (
	// ImportMerge updates matching products and creates the rest.
	ImportMerge ImportMode = "merge"
	// ImportReplace wipes the catalog and inserts the incoming set.
	ImportReplace ImportMode = "replace"
)

// ImportStats summarizes a bulk import.
type ImportStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// Import ingests a product list in one transaction. Merge mode matches
// existing products by barcode first, then by exact name. Replace mode is
// the only path that deletes products.
func (s *Service) Import(ctx context.Context, mode ImportMode, incoming []*Product) (ImportStats, error) {
	var stats ImportStats
	stats.Total = len(incoming)

	for _, p := range incoming {
		if err := p.Validate(ctx); err != nil {
			return ImportStats{}, err
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		switch mode {
		case ImportReplace:
			for _, p := range incoming {
				p.Touch()
			}
			if err := s.repo.ReplaceAll(ctx, incoming); err != nil {
				return fmt.Errorf("replace catalog: %w", err)
			}
			stats.Created = len(incoming)

		case ImportMerge:
			for _, p := range incoming {
				existing, err := s.matchExisting(ctx, p)
				if err != nil {
					return err
				}
				p.Touch()
				if existing == nil {
					if err := s.repo.Create(ctx, p); err != nil {
						return fmt.Errorf("import create %q: %w", p.Name, err)
					}
					stats.Created++
					continue
				}
				p.ID = existing.ID
				p.CreatedAt = existing.CreatedAt
				if err := s.repo.Update(ctx, p); err != nil {
					return fmt.Errorf("import update %q: %w", p.Name, err)
				}
				stats.Updated++
			}

		default:
			return apperror.NewValidation("unknown import mode").
				WithDetail("mode", string(mode))
		}

		return s.audit.Record(ctx, audit.Entry{
			EntityType: "product",
			EntityID:   "bulk",
			Action:     audit.ActionImport,
			Changes: map[string]any{
				"mode":    string(mode),
				"total":   stats.Total,
				"created": stats.Created,
				"updated": stats.Updated,
			},
		})
	})
	if err != nil {
		return ImportStats{}, err
	}

	logger.Info(ctx, "catalog import complete",
		"mode", mode, "total", stats.Total, "created", stats.Created, "updated", stats.Updated)
	return stats, nil
}

// matchExisting finds a product the incoming row should update, or nil.
func (s *Service) matchExisting(ctx context.Context, p *Product) (*Product, error) {
	if p.Barcode != nil && *p.Barcode != "" {
		existing, err := s.repo.GetByBarcode(ctx, *p.Barcode)
		if err == nil {
			return existing, nil
		}
		if !apperror.IsNotFound(err) {
			return nil, err
		}
	}
	existing, err := s.repo.GetByName(ctx, p.Name)
	if err == nil {
		return existing, nil
	}
	if apperror.IsNotFound(err) {
		return nil, nil
	}
	return nil, err
}
