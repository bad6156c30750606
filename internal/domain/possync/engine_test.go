package possync_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/possync"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/reports"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/storage/memory"
)

func newTestEngine(t *testing.T) (*possync.Engine, *memory.Store, *catalog.Service) {
	t.Helper()
	store := memory.NewStore()
	txm := memory.TxManager{}
	catalogSvc := catalog.NewService(store.Products(), txm, store.Audit())
	orderSvc := orders.NewService(store.Orders(), store.Products(), txm, store.Audit())
	reportSvc := reports.NewService(store.Reports(), nil)
	return possync.NewEngine(orderSvc, catalogSvc, reportSvc), store, catalogSvc
}

func seedProduct(t *testing.T, svc *catalog.Service, name string, price float64, stock int64) *catalog.Product {
	t.Helper()
	p := catalog.NewProduct(name, types.NewMoney(price), types.NewMoney(price/2))
	p.Stock = types.NewQuantityFromInt(stock)
	require.NoError(t, svc.Create(context.Background(), p))
	return p
}

func orderCreateChange(t *testing.T, changeID, externalID string, productID int64, qty int64) possync.Change {
	t.Helper()
	payload, err := json.Marshal(orders.CreateInput{
		Source:     orders.SourcePOS,
		ExternalID: &externalID,
		Items: []orders.ItemInput{
			{ProductID: productID, Qty: types.NewQuantityFromInt(qty)},
		},
		Payment:  orders.Payment{Method: orders.PayCash},
		Customer: orders.Customer{Name: "Walk-in", Phone: "024 000 1111"},
	})
	require.NoError(t, err)
	return possync.Change{ChangeID: changeID, Type: possync.ChangeOrderCreate, Payload: payload}
}

func TestSyncIdempotentReplay(t *testing.T) {
	engine, _, catalogSvc := newTestEngine(t)
	ctx := context.Background()
	p := seedProduct(t, catalogSvc, "Rice 5kg", 120, 10)

	change := orderCreateChange(t, "c-1", "pos-sale-1", p.ID, 2)

	first := engine.ApplyBatch(ctx, []possync.Change{change})
	require.Len(t, first, 1)
	require.Equal(t, possync.StatusOK, first[0].Status)
	firstOrder := first[0].Data.(*orders.Order)

	// Replay after a simulated lost ack: same externalId, same result.
	second := engine.ApplyBatch(ctx, []possync.Change{change})
	require.Equal(t, possync.StatusOK, second[0].Status)
	secondOrder := second[0].Data.(*orders.Order)

	assert.Equal(t, firstOrder.ID, secondOrder.ID)

	// Stock decremented exactly once.
	got, err := catalogSvc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(8), got.Stock)
}

func TestSyncBatchIsolation(t *testing.T) {
	engine, _, catalogSvc := newTestEngine(t)
	ctx := context.Background()
	p := seedProduct(t, catalogSvc, "Milk 1L", 15, 3)

	batch := []possync.Change{
		orderCreateChange(t, "c-1", "sale-1", p.ID, 2), // ok, leaves 1
		orderCreateChange(t, "c-2", "sale-2", p.ID, 5), // insufficient stock
		orderCreateChange(t, "c-3", "sale-3", p.ID, 1), // ok, leaves 0
	}

	results := engine.ApplyBatch(ctx, batch)
	require.Len(t, results, 3)
	assert.Equal(t, possync.StatusOK, results[0].Status)
	assert.Equal(t, possync.StatusFailed, results[1].Status)
	assert.NotEmpty(t, results[1].Error)
	assert.Equal(t, possync.StatusOK, results[2].Status)

	got, err := catalogSvc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Stock.IsZero())
}

func TestSyncLastWriterWins(t *testing.T) {
	ctx := context.Background()
	older := time.Now().UTC().Add(-time.Hour)
	newer := older.Add(30 * time.Minute)

	productChange := func(t *testing.T, id int64, name string, stamp time.Time) possync.Change {
		t.Helper()
		payload, err := json.Marshal(map[string]any{
			"id":        id,
			"name":      name,
			"price":     "10",
			"cost":      "5",
			"stock":     1,
			"updatedAt": stamp.Format(time.RFC3339Nano),
		})
		require.NoError(t, err)
		return possync.Change{ChangeID: "c-" + name, Type: possync.ChangeProductUpdate, Payload: payload}
	}

	// Apply the two conflicting edits in both orders; the later stamp must
	// win either way.
	for name, sequence := range map[string][2]time.Time{
		"old-then-new": {older, newer},
		"new-then-old": {newer, older},
	} {
		t.Run(name, func(t *testing.T) {
			engine, store, catalogSvc := newTestEngine(t)
			p := catalog.NewProduct("Sugar", types.NewMoney(10), types.NewMoney(5))
			p.UpdatedAt = older.Add(-time.Hour)
			require.NoError(t, store.Products().Create(ctx, p))

			for _, stamp := range sequence {
				label := "older"
				if stamp.Equal(newer) {
					label = "newer"
				}
				engine.ApplyBatch(ctx, []possync.Change{productChange(t, p.ID, label, stamp)})
			}

			got, err := catalogSvc.Get(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, "newer", got.Name)
		})
	}
}

func TestSyncStaleUpdateSkipped(t *testing.T) {
	engine, _, catalogSvc := newTestEngine(t)
	ctx := context.Background()
	p := seedProduct(t, catalogSvc, "Bread", 5, 10)

	payload, err := json.Marshal(map[string]any{
		"id":        p.ID,
		"name":      "Stale Bread",
		"price":     "4",
		"cost":      "2",
		"stock":     10,
		"updatedAt": p.UpdatedAt.Add(-time.Minute).Format(time.RFC3339Nano),
	})
	require.NoError(t, err)

	results := engine.ApplyBatch(ctx, []possync.Change{{
		ChangeID: "c-stale", Type: possync.ChangeProductUpdate, Payload: payload,
	}})
	require.Len(t, results, 1)
	assert.Equal(t, possync.StatusSkipped, results[0].Status)

	got, err := catalogSvc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bread", got.Name)
}

func TestSyncUnknownTypeSkipped(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	results := engine.ApplyBatch(context.Background(), []possync.Change{{
		ChangeID: "c-1", Type: "order:frobnicate", Payload: json.RawMessage(`{}`),
	}})
	require.Len(t, results, 1)
	assert.Equal(t, possync.StatusSkipped, results[0].Status)
	assert.Contains(t, results[0].Error, "unrecognized")
}

func TestSyncSnapshotSinceCursor(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	cursor := time.Now().UTC()

	old := catalog.NewProduct("Old Product", types.NewMoney(10), types.NewMoney(5))
	old.UpdatedAt = cursor.Add(-time.Hour)
	require.NoError(t, store.Products().Create(ctx, old))

	fresh := catalog.NewProduct("Fresh Product", types.NewMoney(20), types.NewMoney(10))
	fresh.UpdatedAt = cursor.Add(time.Minute)
	require.NoError(t, store.Products().Create(ctx, fresh))

	resp, err := engine.Sync(ctx, possync.Request{Since: &cursor})
	require.NoError(t, err)
	require.True(t, resp.OK)

	ids := make([]int64, 0, len(resp.Snapshot.Products))
	for _, p := range resp.Snapshot.Products {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, fresh.ID)
	assert.NotContains(t, ids, old.ID)
	assert.NotNil(t, resp.Snapshot.Reports)
	assert.False(t, resp.ServerTime.IsZero())
}

func TestSyncStockAdjust(t *testing.T) {
	engine, _, catalogSvc := newTestEngine(t)
	ctx := context.Background()
	p := seedProduct(t, catalogSvc, "Eggs", 2, 5)

	adjust := func(amount int64) possync.AppliedResult {
		payload, err := json.Marshal(map[string]any{"productId": p.ID, "amount": amount})
		require.NoError(t, err)
		results := engine.ApplyBatch(ctx, []possync.Change{{
			ChangeID: "c-adj", Type: possync.ChangeStockAdjust, Payload: payload,
		}})
		require.Len(t, results, 1)
		return results[0]
	}

	assert.Equal(t, possync.StatusOK, adjust(3).Status)
	got, err := catalogSvc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(8), got.Stock)

	// Negative corrections clamp at zero, never below.
	assert.Equal(t, possync.StatusOK, adjust(-100).Status)
	got, err = catalogSvc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Stock.IsZero())
}
