package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Senanu-web/bskal-enterprise/pkg/logger"
)

// Cache stores computed overviews. Implementations live in
// infrastructure/cache; NoopCache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (*Overview, bool, error)
	Set(ctx context.Context, key string, value *Overview, ttl time.Duration) error
}

// NoopCache disables report caching.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*Overview, bool, error) { return nil, false, nil }
func (NoopCache) Set(context.Context, string, *Overview, time.Duration) error {
	return nil
}

// OverviewTTL bounds staleness of the cached sync-snapshot reports.
const OverviewTTL = 30 * time.Second

// Service provides report computation with a short-TTL cache in front.
type Service struct {
	repo  Repository
	cache Cache
	now   func() time.Time
}

// NewService creates a new report service.
func NewService(repo Repository, cache Cache) *Service {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Service{
		repo:  repo,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Overview computes the report bundle attached to every sync snapshot.
// Every connected POS device polls sync on a short interval, so the bundle
// is cached briefly instead of recomputed per call.
func (s *Service) Overview(ctx context.Context, branchID int64) (*Overview, error) {
	key := fmt.Sprintf("reports:overview:%d", branchID)
	if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		return cached, nil
	} else if err != nil {
		logger.Warn(ctx, "report cache read failed", "error", err)
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	pl, err := s.repo.ProfitLoss(ctx, branchID, monthStart, now)
	if err != nil {
		return nil, fmt.Errorf("profit/loss: %w", err)
	}
	weekly, err := s.repo.WeeklySales(ctx, branchID, now)
	if err != nil {
		return nil, fmt.Errorf("weekly sales: %w", err)
	}
	loyalty, err := s.repo.LoyaltyCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loyalty: %w", err)
	}

	overview := &Overview{
		ProfitLoss:  pl,
		WeeklySales: weekly,
		Loyalty:     loyalty,
		GeneratedAt: now,
	}

	if err := s.cache.Set(ctx, key, overview, OverviewTTL); err != nil {
		logger.Warn(ctx, "report cache write failed", "error", err)
	}
	return overview, nil
}

// TopProducts ranks best sellers for the period.
func (s *Service) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.TopProducts(ctx, from, to, limit)
}

// StaffPerformance aggregates per-staff sales for the period.
func (s *Service) StaffPerformance(ctx context.Context, from, to time.Time) ([]StaffPerformance, error) {
	return s.repo.StaffPerformance(ctx, from, to)
}

// Discount is the public loyalty lookup result. Unknown phones get the
// zero tier rather than an error, so the storefront can always render it.
type Discount struct {
	Phone       string `json:"phone"`
	Orders      int    `json:"orders"`
	DiscountPct int    `json:"discountPct"`
}

// CheckDiscount returns the loyalty tier for a customer phone number.
// Matching is whitespace-insensitive, same as order cancellation.
func (s *Service) CheckDiscount(ctx context.Context, phone string) (Discount, error) {
	normalized := strings.Join(strings.Fields(phone), "")
	out := Discount{Phone: normalized}
	if normalized == "" {
		return out, nil
	}

	customers, err := s.repo.LoyaltyCustomers(ctx)
	if err != nil {
		return out, fmt.Errorf("loyalty: %w", err)
	}
	for _, c := range customers {
		if strings.Join(strings.Fields(c.Phone), "") == normalized {
			out.Orders = c.Orders
			out.DiscountPct = DiscountPctFor(c.Orders)
			break
		}
	}
	return out, nil
}
