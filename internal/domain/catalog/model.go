// Package catalog provides the product catalog and its stock ledger.
// Products are never hard-deleted in normal flow; the bulk "replace" import
// is the only deletion path and runs in a single transaction.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
)

// Product represents a sellable item.
//
// UpdatedAt doubles as the logical clock for last-writer-wins conflict
// resolution between the server and offline POS devices (§ sync engine).
type Product struct {
	ID int64 `db:"id" json:"id"`

	Name string `db:"name" json:"name"`

	// Category groups products for reporting (top sellers, profit/loss).
	Category *string `db:"category" json:"category,omitempty"`

	// Price is the selling price.
	Price types.Money `db:"price" json:"price"`

	// Cost is the purchase cost, used for profit/loss reporting.
	Cost types.Money `db:"cost" json:"cost"`

	// Stock is fractional-capable to support weight-based goods.
	Stock types.Quantity `db:"stock" json:"stock"`

	// Barcode is optional; uniqueness is advisory, not enforced.
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	ImageURL *string `db:"image_url" json:"imageUrl,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewProduct creates a Product with required fields and a fresh clock stamp.
func NewProduct(name string, price, cost types.Money) *Product {
	now := time.Now().UTC()
	return &Product{
		Name:      strings.TrimSpace(name),
		Price:     price,
		Cost:      cost,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks field-level invariants.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("product name is required").
			WithDetail("field", "name")
	}
	if p.Price.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}
	if p.Cost.IsNegative() {
		return apperror.NewValidation("cost cannot be negative").
			WithDetail("field", "cost")
	}
	if p.Stock.IsNegative() {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "stock")
	}
	return nil
}

// Touch stamps the logical clock with the current time.
func (p *Product) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// NewerThan reports whether the incoming timestamp should win against the
// stored one. Equal timestamps are accepted (replays stay idempotent); only
// strictly earlier writes lose.
func NewerThan(incoming, stored time.Time) bool {
	return !incoming.Before(stored)
}
