package orders

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/core/tx"
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/audit"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
	"github.com/Senanu-web/bskal-enterprise/pkg/logger"
)

// CancelWindow is how long after placement a customer may cancel online.
const CancelWindow = 15 * time.Minute

// Service provides business logic for the order lifecycle.
type Service struct {
	repo      Repository
	products  catalog.Repository
	txManager tx.Manager
	audit     audit.Recorder
	now       func() time.Time
}

// NewService creates a new order service.
func NewService(repo Repository, products catalog.Repository, txManager tx.Manager, recorder audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		txManager: txManager,
		audit:     recorder,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ItemInput is one requested order line. PriceAt is optional: when zero the
// current product price is captured (web checkout); POS replay supplies the
// price shown at sale time.
type ItemInput struct {
	ProductID int64          `json:"productId"`
	Qty       types.Quantity `json:"qty"`
	PriceAt   types.Money    `json:"priceAt"`
}

// CreateInput carries everything needed to place an order.
type CreateInput struct {
	Source     string     `json:"source"`
	ExternalID *string    `json:"externalId,omitempty"`
	Items      []ItemInput `json:"items"`
	Delivery   Delivery   `json:"delivery"`
	Payment    Payment    `json:"payment"`
	Customer   Customer   `json:"customer"`
	StaffName  string     `json:"staffName,omitempty"`
	StaffRole  string     `json:"staffRole,omitempty"`
	BranchID   int64      `json:"branchId"`
	BranchName string     `json:"branchName,omitempty"`
	Status     Status     `json:"status,omitempty"` // POS in-store sales may start past Placed
}

// Create places an order. Stock is validated and decremented atomically in
// the same transaction that inserts the order, so two concurrent checkouts
// cannot both take the last unit.
//
// For POS-originated input carrying an ExternalID, replaying the same input
// returns the existing order instead of creating a duplicate.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Order, error) {
	order, _, err := s.create(ctx, input)
	return order, err
}

// CreateIdempotent is Create plus a flag telling whether a new order was
// actually created (false on idempotent replay).
func (s *Service) CreateIdempotent(ctx context.Context, input CreateInput) (*Order, bool, error) {
	return s.create(ctx, input)
}

func (s *Service) create(ctx context.Context, input CreateInput) (*Order, bool, error) {
	status := input.Status
	if status == "" {
		status = StatusPlaced
	}
	if !status.IsValid() || status.IsTerminal() {
		return nil, false, apperror.NewValidation("invalid initial order status").
			WithDetail("status", string(status))
	}

	var (
		order   *Order
		created bool
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Idempotent replay: the client retries unacknowledged changes after
		// reconnecting, so the same sale may arrive more than once.
		if input.ExternalID != nil && *input.ExternalID != "" {
			existing, err := s.repo.GetBySourceExternalID(ctx, input.Source, *input.ExternalID)
			if err == nil {
				order = existing
				return nil
			}
			if !apperror.IsNotFound(err) {
				return err
			}
		}

		o, err := s.buildOrder(ctx, input, status)
		if err != nil {
			return err
		}

		lines := make([]catalog.StockLine, 0, len(o.Items))
		for _, item := range o.Items {
			lines = append(lines, catalog.StockLine{ProductID: item.ProductID, Qty: item.Qty})
		}
		if err := s.products.DecrementStockGuarded(ctx, lines); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order = o
		created = true

		return s.audit.Record(ctx, audit.Entry{
			EntityType: "order",
			EntityID:   strconv.FormatInt(o.ID, 10),
			Action:     audit.ActionCreate,
			Changes: map[string]any{
				"source": o.Source,
				"total":  o.Total,
				"status": o.Status,
				"items":  len(o.Items),
			},
		})
	})
	if err != nil {
		// A concurrent replay of the same sale can lose the unique-index
		// race on (source, externalId) after the pre-insert lookup missed.
		// The transaction has rolled back, so resolve the winner afresh.
		if apperror.IsDuplicate(err) && input.ExternalID != nil && *input.ExternalID != "" {
			existing, lookupErr := s.repo.GetBySourceExternalID(ctx, input.Source, *input.ExternalID)
			if lookupErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}

	if created {
		logger.Info(ctx, "order created",
			"order_id", order.ID, "source", order.Source, "total", order.Total)
	}
	return order, created, nil
}

// buildOrder resolves products, captures prices and assembles the order.
func (s *Service) buildOrder(ctx context.Context, input CreateInput, status Status) (*Order, error) {
	now := s.now()
	o := &Order{
		Source:        input.Source,
		ExternalID:    input.ExternalID,
		Status:        status,
		Delivery:      input.Delivery,
		Payment:       input.Payment,
		Customer:      input.Customer,
		StaffName:     input.StaffName,
		StaffRole:     input.StaffRole,
		BranchID:      input.BranchID,
		BranchName:    input.BranchName,
		TrackingToken: newTrackingToken(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, in := range input.Items {
		p, err := s.products.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		priceAt := in.PriceAt
		if priceAt.IsZero() {
			priceAt = p.Price
		}
		o.Items = append(o.Items, OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Qty:       in.Qty,
			PriceAt:   priceAt,
		})
	}

	o.ComputeTotal()
	if err := o.Validate(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// Ref identifies an order either by server ID or by (source, externalId).
type Ref struct {
	ID         int64
	Source     string
	ExternalID string
}

// Resolve finds the order a Ref points at.
func (s *Service) Resolve(ctx context.Context, ref Ref) (*Order, error) {
	if ref.ID > 0 {
		return s.repo.GetByID(ctx, ref.ID)
	}
	if ref.ExternalID != "" {
		source := ref.Source
		if source == "" {
			source = SourcePOS
		}
		return s.repo.GetBySourceExternalID(ctx, source, ref.ExternalID)
	}
	return nil, apperror.NewValidation("order reference requires id or externalId")
}

// ChangeStatus applies a state machine transition. Entering Cancelled or
// Returned restores every line item's quantity to stock; repeating a
// terminal transition is an idempotent no-op, so stock is never restored
// twice.
func (s *Service) ChangeStatus(ctx context.Context, ref Ref, to Status) (*Order, error) {
	if !to.IsValid() {
		return nil, apperror.NewValidation("unknown order status").
			WithDetail("status", string(to))
	}

	var order *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.Resolve(ctx, ref)
		if err != nil {
			return err
		}

		// Idempotent terminal repeat: return the order unchanged.
		if o.Status == to && to.IsTerminal() {
			order = o
			return nil
		}

		if !CanTransition(o.Status, to) {
			return apperror.NewInvalidTransition(string(o.Status), string(to))
		}

		if to.RestoresStock() {
			lines := make([]catalog.StockLine, 0, len(o.Items))
			for _, item := range o.Items {
				lines = append(lines, catalog.StockLine{ProductID: item.ProductID, Qty: item.Qty})
			}
			if err := s.products.RestoreStock(ctx, lines); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}

		from := o.Status
		o.Status = to
		o.UpdatedAt = s.now()
		if err := s.repo.UpdateStatus(ctx, o.ID, to, o.UpdatedAt); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		order = o

		return s.audit.Record(ctx, audit.Entry{
			EntityType: "order",
			EntityID:   strconv.FormatInt(o.ID, 10),
			Action:     audit.ActionStatusChange,
			Changes:    map[string]any{"from": from, "to": to},
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CancelByCustomer handles self-service cancellation: allowed only within
// CancelWindow of placement and only when the supplied phone matches the
// order's stored customer phone (whitespace-normalized).
func (s *Service) CancelByCustomer(ctx context.Context, orderID int64, phone string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.PhoneMatches(phone) {
		return nil, apperror.NewUnauthorized("phone number does not match this order")
	}
	if s.now().Sub(o.CreatedAt) > CancelWindow {
		return nil, apperror.NewCancelWindowClosed(strconv.FormatInt(orderID, 10))
	}
	return s.ChangeStatus(ctx, Ref{ID: orderID}, StatusCancelled)
}

// CancelByTrackingToken lets a driver cancel using the order's tracking
// token capability instead of a phone match.
func (s *Service) CancelByTrackingToken(ctx context.Context, token string) (*Order, error) {
	o, err := s.repo.GetByTrackingToken(ctx, token)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid tracking token")
	}
	return s.ChangeStatus(ctx, Ref{ID: o.ID}, StatusCancelled)
}

// UpdateLocation accepts a courier location ping authorized by tracking
// token. Only the last known location is kept.
func (s *Service) UpdateLocation(ctx context.Context, token string, loc Location) (*Order, error) {
	o, err := s.repo.GetByTrackingToken(ctx, token)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid tracking token")
	}
	if loc.Timestamp.IsZero() {
		loc.Timestamp = s.now()
	}
	if err := s.repo.SetLocation(ctx, o.ID, loc); err != nil {
		return nil, fmt.Errorf("set location: %w", err)
	}
	o.Location = &loc
	return o, nil
}

// TrackByToken returns the public view of an order for customers following
// a tracking link.
func (s *Service) TrackByToken(ctx context.Context, token string) (*Order, error) {
	o, err := s.repo.GetByTrackingToken(ctx, token)
	if err != nil {
		return nil, apperror.NewNotFound("order", token)
	}
	return o, nil
}

// Get retrieves an order by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves orders matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	return s.repo.List(ctx, filter)
}

// ListUpdatedSince returns orders changed at or after the cursor.
func (s *Service) ListUpdatedSince(ctx context.Context, since time.Time) ([]*Order, error) {
	return s.repo.ListUpdatedSince(ctx, since)
}

// CashTotalsBetween exposes shift reconciliation sums.
func (s *Service) CashTotalsBetween(ctx context.Context, branchID int64, from, to time.Time) (CashTotals, error) {
	return s.repo.CashTotalsBetween(ctx, branchID, from, to)
}

// newTrackingToken generates an opaque capability string.
func newTrackingToken() string {
	return strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
}
