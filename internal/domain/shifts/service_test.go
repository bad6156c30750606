package shifts_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	appctx "github.com/Senanu-web/bskal-enterprise/internal/core/context"
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/shifts"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/storage/memory"
)

type shiftFixture struct {
	svc    *shifts.Service
	orders *orders.Service
	store  *memory.Store
	clock  time.Time
}

func newShiftFixture(t *testing.T) *shiftFixture {
	t.Helper()
	store := memory.NewStore()
	txm := memory.TxManager{}
	f := &shiftFixture{
		store: store,
		clock: time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return f.clock }
	f.orders = orders.NewService(store.Orders(), store.Products(), txm, store.Audit()).WithClock(now)
	f.svc = shifts.NewService(store.Shifts(), store.Orders(), txm, store.Audit()).WithClock(now)
	return f
}

func (f *shiftFixture) asStaff(id int64, role string) context.Context {
	return appctx.WithStaff(context.Background(), &appctx.StaffContext{
		StaffID: id, Role: role, BranchID: 1,
	})
}

// cashOrder places a cash order at branch 1 for the given total and moves it
// to the given status.
func (f *shiftFixture) cashOrder(t *testing.T, total float64, status orders.Status) *orders.Order {
	t.Helper()
	ctx := context.Background()

	p := catalog.NewProduct("item", types.NewMoney(total), types.NewMoney(total/2))
	p.Stock = types.NewQuantityFromInt(10)
	p.UpdatedAt = f.clock
	require.NoError(t, f.store.Products().Create(ctx, p))

	o, err := f.orders.Create(ctx, orders.CreateInput{
		Source:   orders.SourcePOS,
		Items:    []orders.ItemInput{{ProductID: p.ID, Qty: types.NewQuantityFromInt(1)}},
		Payment:  orders.Payment{Method: orders.PayCash},
		BranchID: 1,
	})
	require.NoError(t, err)

	if status != orders.StatusPlaced {
		if status == orders.StatusReturned {
			_, err = f.orders.ChangeStatus(ctx, orders.Ref{ID: o.ID}, orders.StatusDelivered)
			require.NoError(t, err)
		}
		_, err = f.orders.ChangeStatus(ctx, orders.Ref{ID: o.ID}, status)
		require.NoError(t, err)
	}
	return o
}

func TestComputeExpected(t *testing.T) {
	expected := shifts.ComputeExpected(
		types.NewMoney(100), // opening
		types.NewMoney(50),  // cash sales
		types.NewMoney(20),  // cash refunds
		types.NewMoney(10),  // cash in
		types.NewMoney(15),  // cash out
	)
	assert.True(t, expected.Equal(types.NewMoney(125)))
}

func TestCloseReconciliation(t *testing.T) {
	f := newShiftFixture(t)
	ctx := f.asStaff(1, appctx.RoleCashier)

	shift, err := f.svc.Open(ctx, 1, 1, types.NewMoney(100))
	require.NoError(t, err)

	f.clock = f.clock.Add(time.Hour)
	f.cashOrder(t, 50, orders.StatusDelivered)
	f.cashOrder(t, 20, orders.StatusReturned)
	f.cashOrder(t, 30, orders.StatusCancelled) // excluded entirely

	f.clock = f.clock.Add(time.Hour)
	closed, err := f.svc.Close(ctx, shift.ID, types.NewMoney(125))
	require.NoError(t, err)

	// expected = 100 + 50 − 20 = 130; counted 125 → variance −5.
	assert.True(t, closed.ExpectedCash.Equal(types.NewMoney(130)),
		"expected cash = %s", closed.ExpectedCash)
	assert.True(t, closed.Variance.Equal(types.NewMoney(-5)),
		"variance = %s", closed.Variance)
	assert.Equal(t, shifts.StatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)
}

func TestCashMovementsAffectExpected(t *testing.T) {
	f := newShiftFixture(t)
	ctx := f.asStaff(1, appctx.RoleCashier)

	shift, err := f.svc.Open(ctx, 1, 1, types.NewMoney(100))
	require.NoError(t, err)

	_, err = f.svc.RecordMovement(ctx, shift.ID, shifts.MovementIn, types.NewMoney(40), "change float top-up")
	require.NoError(t, err)
	_, err = f.svc.RecordMovement(ctx, shift.ID, shifts.MovementOut, types.NewMoney(25), "supplier payout")
	require.NoError(t, err)

	rec, err := f.svc.Preview(ctx, shift.ID)
	require.NoError(t, err)
	assert.True(t, rec.CashIn.Equal(types.NewMoney(40)))
	assert.True(t, rec.CashOut.Equal(types.NewMoney(25)))
	assert.True(t, rec.ExpectedCash.Equal(types.NewMoney(115)))
}

func TestOneOpenShiftPerStaff(t *testing.T) {
	f := newShiftFixture(t)
	ctx := f.asStaff(1, appctx.RoleCashier)

	_, err := f.svc.Open(ctx, 1, 1, types.NewMoney(50))
	require.NoError(t, err)

	_, err = f.svc.Open(ctx, 1, 1, types.NewMoney(60))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeShiftOpen, appErr.Code)

	// A different staff member is unaffected.
	_, err = f.svc.Open(f.asStaff(2, appctx.RoleCashier), 2, 1, types.NewMoney(60))
	require.NoError(t, err)
}

func TestCloseAuthorization(t *testing.T) {
	f := newShiftFixture(t)
	owner := f.asStaff(1, appctx.RoleCashier)

	shift, err := f.svc.Open(owner, 1, 1, types.NewMoney(0))
	require.NoError(t, err)

	// Another cashier may not close someone else's shift.
	_, err = f.svc.Close(f.asStaff(2, appctx.RoleCashier), shift.ID, types.NewMoney(0))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)

	// A manager may.
	_, err = f.svc.Close(f.asStaff(3, appctx.RoleManager), shift.ID, types.NewMoney(0))
	require.NoError(t, err)
}

func TestCloseIsOneWay(t *testing.T) {
	f := newShiftFixture(t)
	ctx := f.asStaff(1, appctx.RoleCashier)

	shift, err := f.svc.Open(ctx, 1, 1, types.NewMoney(10))
	require.NoError(t, err)
	_, err = f.svc.Close(ctx, shift.ID, types.NewMoney(10))
	require.NoError(t, err)

	_, err = f.svc.Close(ctx, shift.ID, types.NewMoney(10))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeShiftClosed, appErr.Code)

	_, err = f.svc.RecordMovement(ctx, shift.ID, shifts.MovementIn, types.NewMoney(5), "late")
	require.Error(t, err)
}

func TestReconciliationFrozenAfterClose(t *testing.T) {
	f := newShiftFixture(t)
	ctx := f.asStaff(1, appctx.RoleCashier)

	shift, err := f.svc.Open(ctx, 1, 1, types.NewMoney(100))
	require.NoError(t, err)

	f.clock = f.clock.Add(time.Hour)
	f.cashOrder(t, 50, orders.StatusDelivered)

	f.clock = f.clock.Add(time.Hour)
	_, err = f.svc.Close(ctx, shift.ID, types.NewMoney(150))
	require.NoError(t, err)

	// Cash activity after close must not move the frozen numbers.
	f.clock = f.clock.Add(time.Hour)
	f.cashOrder(t, 500, orders.StatusDelivered)

	stored, _, err := f.svc.Get(ctx, shift.ID)
	require.NoError(t, err)
	assert.True(t, stored.ExpectedCash.Equal(types.NewMoney(150)))
	assert.True(t, stored.Variance.IsZero())

	rec, err := f.svc.Preview(ctx, shift.ID)
	require.NoError(t, err)
	assert.True(t, rec.CashSales.Equal(types.NewMoney(50)))
}

func TestCurrentShift(t *testing.T) {
	f := newShiftFixture(t)
	ctx := f.asStaff(7, appctx.RoleCashier)

	_, err := f.svc.Current(ctx)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	opened, err := f.svc.Open(ctx, 7, 1, types.NewMoney(20))
	require.NoError(t, err)

	current, err := f.svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, opened.ID, current.ID)
}
