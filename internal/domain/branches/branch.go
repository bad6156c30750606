// Package branches provides store branch records.
package branches

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/core/tx"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/audit"
)

// Branch is a physical store location. Orders and shifts are scoped to one.
type Branch struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Address string `db:"address" json:"address,omitempty"`
	Phone   string `db:"phone" json:"phone,omitempty"`
	Active  bool   `db:"active" json:"active"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Validate checks field-level invariants.
func (b *Branch) Validate(ctx context.Context) error {
	if strings.TrimSpace(b.Name) == "" {
		return apperror.NewValidation("branch name is required").
			WithDetail("field", "name")
	}
	return nil
}

// Repository defines persistence operations for branches.
type Repository interface {
	Create(ctx context.Context, b *Branch) error
	Update(ctx context.Context, b *Branch) error
	GetByID(ctx context.Context, id int64) (*Branch, error)
	List(ctx context.Context) ([]*Branch, error)
}

// Service provides business logic for branches.
type Service struct {
	repo      Repository
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates a new branch service.
func NewService(repo Repository, txManager tx.Manager, recorder audit.Recorder) *Service {
	return &Service{repo: repo, txManager: txManager, audit: recorder}
}

// Create validates and persists a new branch.
func (s *Service) Create(ctx context.Context, b *Branch) error {
	if err := b.Validate(ctx); err != nil {
		return err
	}
	b.Active = true
	b.CreatedAt = time.Now().UTC()

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, b); err != nil {
			return err
		}
		return s.audit.Record(ctx, audit.Entry{
			EntityType: "branch",
			EntityID:   strconv.FormatInt(b.ID, 10),
			Action:     audit.ActionCreate,
			Changes:    map[string]any{"name": b.Name},
		})
	})
}

// Update validates and persists branch changes.
func (s *Service) Update(ctx context.Context, b *Branch) error {
	if err := b.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}
		return s.audit.Record(ctx, audit.Entry{
			EntityType: "branch",
			EntityID:   strconv.FormatInt(b.ID, 10),
			Action:     audit.ActionUpdate,
			Changes:    map[string]any{"name": b.Name, "active": b.Active},
		})
	})
}

// Get retrieves a branch by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Branch, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves all branches.
func (s *Service) List(ctx context.Context) ([]*Branch, error) {
	return s.repo.List(ctx)
}
