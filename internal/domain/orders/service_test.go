package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/storage/memory"
)

type orderFixture struct {
	svc     *orders.Service
	catalog *catalog.Service
	store   *memory.Store
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	store := memory.NewStore()
	txm := memory.TxManager{}
	return &orderFixture{
		svc:     orders.NewService(store.Orders(), store.Products(), txm, store.Audit()),
		catalog: catalog.NewService(store.Products(), txm, store.Audit()),
		store:   store,
	}
}

func (f *orderFixture) seedProduct(t *testing.T, name string, price float64, stock int64) *catalog.Product {
	t.Helper()
	p := catalog.NewProduct(name, types.NewMoney(price), types.NewMoney(price/2))
	p.Stock = types.NewQuantityFromInt(stock)
	require.NoError(t, f.catalog.Create(context.Background(), p))
	return p
}

func (f *orderFixture) placeOrder(t *testing.T, p *catalog.Product, qty int64) *orders.Order {
	t.Helper()
	o, err := f.svc.Create(context.Background(), orders.CreateInput{
		Source: orders.SourceWeb,
		Items: []orders.ItemInput{
			{ProductID: p.ID, Qty: types.NewQuantityFromInt(qty)},
		},
		Payment:  orders.Payment{Method: orders.PayMobile},
		Customer: orders.Customer{Name: "Ama", Phone: "024 123 4567"},
	})
	require.NoError(t, err)
	return o
}

func (f *orderFixture) stockOf(t *testing.T, id int64) types.Quantity {
	t.Helper()
	p, err := f.catalog.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestCreateCapturesPriceAtSaleTime(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Palm Oil 1L", 35, 10)

	o := f.placeOrder(t, p, 2)
	require.Len(t, o.Items, 1)
	assert.True(t, o.Items[0].PriceAt.Equal(types.NewMoney(35)))
	assert.True(t, o.Total.Equal(types.NewMoney(70)))

	// A later price change must not leak into the stored order.
	p.Price = types.NewMoney(50)
	require.NoError(t, f.catalog.Update(ctx, p))

	stored, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].PriceAt.Equal(types.NewMoney(35)))
}

func TestCreateRejectsInsufficientStock(t *testing.T) {
	f := newOrderFixture(t)
	p := f.seedProduct(t, "Yam", 20, 1)

	_, err := f.svc.Create(context.Background(), orders.CreateInput{
		Source: orders.SourceWeb,
		Items: []orders.ItemInput{
			{ProductID: p.ID, Qty: types.NewQuantityFromInt(3)},
		},
		Payment: orders.Payment{Method: orders.PayCash},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Nothing was taken.
	assert.Equal(t, types.NewQuantityFromInt(1), f.stockOf(t, p.ID))
}

func TestCreateMultiLinePartialStockTakesNothing(t *testing.T) {
	f := newOrderFixture(t)
	ok := f.seedProduct(t, "Plenty", 5, 100)
	scarce := f.seedProduct(t, "Scarce", 5, 1)

	_, err := f.svc.Create(context.Background(), orders.CreateInput{
		Source: orders.SourceWeb,
		Items: []orders.ItemInput{
			{ProductID: ok.ID, Qty: types.NewQuantityFromInt(10)},
			{ProductID: scarce.ID, Qty: types.NewQuantityFromInt(2)},
		},
		Payment: orders.Payment{Method: orders.PayCash},
	})
	require.Error(t, err)

	assert.Equal(t, types.NewQuantityFromInt(100), f.stockOf(t, ok.ID))
	assert.Equal(t, types.NewQuantityFromInt(1), f.stockOf(t, scarce.ID))
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to orders.Status
		allowed  bool
	}{
		{orders.StatusPlaced, orders.StatusProcessing, true},
		{orders.StatusPlaced, orders.StatusDelivered, true}, // skipping ahead is legal
		{orders.StatusProcessing, orders.StatusDispatched, true},
		{orders.StatusDispatched, orders.StatusDelivered, true},
		{orders.StatusDelivered, orders.StatusReturned, true},
		{orders.StatusDispatched, orders.StatusCancelled, true},
		{orders.StatusProcessing, orders.StatusPlaced, false}, // no going back
		{orders.StatusDelivered, orders.StatusCancelled, false},
		{orders.StatusCancelled, orders.StatusProcessing, false},
		{orders.StatusReturned, orders.StatusDelivered, false},
		{orders.StatusPlaced, orders.StatusReturned, false}, // return requires delivery
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, orders.CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestCancelRestoresStockOnce(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Soap", 8, 10)
	o := f.placeOrder(t, p, 4)
	require.Equal(t, types.NewQuantityFromInt(6), f.stockOf(t, p.ID))

	cancelled, err := f.svc.ChangeStatus(ctx, orders.Ref{ID: o.ID}, orders.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, cancelled.Status)
	assert.Equal(t, types.NewQuantityFromInt(10), f.stockOf(t, p.ID))

	// Repeating the terminal transition is a no-op, not a second restock.
	again, err := f.svc.ChangeStatus(ctx, orders.Ref{ID: o.ID}, orders.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, again.Status)
	assert.Equal(t, types.NewQuantityFromInt(10), f.stockOf(t, p.ID))
}

func TestReturnRestoresStock(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Batteries", 12, 5)
	o := f.placeOrder(t, p, 2)

	_, err := f.svc.ChangeStatus(ctx, orders.Ref{ID: o.ID}, orders.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(3), f.stockOf(t, p.ID))

	_, err = f.svc.ChangeStatus(ctx, orders.Ref{ID: o.ID}, orders.StatusReturned)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(5), f.stockOf(t, p.ID))
}

func TestCancelByCustomerWindow(t *testing.T) {
	placed := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		elapsed time.Duration
		wantErr bool
	}{
		{"just inside", 14*time.Minute + 59*time.Second, false},
		{"exactly at window", 15 * time.Minute, false},
		{"just outside", 15*time.Minute + 1*time.Second, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newOrderFixture(t)
			clock := placed
			f.svc.WithClock(func() time.Time { return clock })

			p := f.seedProduct(t, "Gari", 10, 10)
			o := f.placeOrder(t, p, 1)

			clock = placed.Add(tc.elapsed)
			_, err := f.svc.CancelByCustomer(context.Background(), o.ID, "0241234567")
			if tc.wantErr {
				require.Error(t, err)
				appErr, ok := apperror.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, apperror.CodeCancelWindowClosed, appErr.Code)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCancelByCustomerPhoneNormalization(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Tomatoes", 6, 10)
	o := f.placeOrder(t, p, 1) // stored phone "024 123 4567"

	_, err := f.svc.CancelByCustomer(ctx, o.ID, "055 999 0000")
	require.Error(t, err)

	cancelled, err := f.svc.CancelByCustomer(ctx, o.ID, "  0241234567 ")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, cancelled.Status)
}

func TestTrackingTokenCapability(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Charcoal", 25, 10)
	o := f.placeOrder(t, p, 1)
	require.NotEmpty(t, o.TrackingToken)

	_, err := f.svc.TrackByToken(ctx, "no-such-token")
	require.Error(t, err)

	loc := orders.Location{Lat: 5.6037, Lng: -0.187, Accuracy: 12}
	updated, err := f.svc.UpdateLocation(ctx, o.TrackingToken, loc)
	require.NoError(t, err)
	require.NotNil(t, updated.Location)
	assert.Equal(t, loc.Lat, updated.Location.Lat)
	assert.False(t, updated.Location.Timestamp.IsZero())

	// Only the last ping is kept.
	second := orders.Location{Lat: 5.61, Lng: -0.19, Accuracy: 8}
	_, err = f.svc.UpdateLocation(ctx, o.TrackingToken, second)
	require.NoError(t, err)

	tracked, err := f.svc.TrackByToken(ctx, o.TrackingToken)
	require.NoError(t, err)
	require.NotNil(t, tracked.Location)
	assert.Equal(t, second.Lat, tracked.Location.Lat)

	// The driver can cancel with the token; no phone match needed.
	cancelled, err := f.svc.CancelByTrackingToken(ctx, o.TrackingToken)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, cancelled.Status)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "0241234567", orders.NormalizePhone(" 024 123\t4567 "))
	assert.Equal(t, "", orders.NormalizePhone("   "))
}

// lostRaceOrderRepo simulates losing the unique-index race on
// (source, externalId): the pre-insert lookup misses because the
// concurrent replay commits between the lookup and the insert.
type lostRaceOrderRepo struct {
	orders.Repository
	misses int
}

func (r *lostRaceOrderRepo) GetBySourceExternalID(ctx context.Context, source, externalID string) (*orders.Order, error) {
	if r.misses > 0 {
		r.misses--
		return nil, apperror.NewNotFound("order", externalID)
	}
	return r.Repository.GetBySourceExternalID(ctx, source, externalID)
}

func TestCreateIdempotentAfterLostUniqueRace(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Sugar 1kg", 12.5, 10)

	ext := "dev-42"
	input := orders.CreateInput{
		Source:     orders.SourcePOS,
		ExternalID: &ext,
		Items: []orders.ItemInput{
			{ProductID: p.ID, Qty: types.NewQuantityFromInt(2)},
		},
		Payment:  orders.Payment{Method: orders.PayCash},
		Customer: orders.Customer{Name: "Kofi", Phone: "020 000 2222"},
	}

	first, created, err := f.svc.CreateIdempotent(ctx, input)
	require.NoError(t, err)
	assert.True(t, created)

	racing := orders.NewService(
		&lostRaceOrderRepo{Repository: f.store.Orders(), misses: 1},
		f.store.Products(), memory.TxManager{}, f.store.Audit(),
	)
	replay, created, err := racing.CreateIdempotent(ctx, input)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, replay.ID)
}
