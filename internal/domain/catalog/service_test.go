package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/storage/memory"
)

func newCatalogService(t *testing.T) (*catalog.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return catalog.NewService(store.Products(), memory.TxManager{}, store.Audit()), store
}

func strPtr(s string) *string { return &s }

func TestCreateRejectsInvalidProduct(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	err := svc.Create(ctx, catalog.NewProduct("   ", types.NewMoney(1), types.NewMoney(1)))
	require.Error(t, err)

	p := catalog.NewProduct("Negative", types.NewMoney(-1), types.NewMoney(1))
	require.Error(t, svc.Create(ctx, p))
}

func TestApplyExternalUpdateLastWriterWins(t *testing.T) {
	svc, store := newCatalogService(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	p := catalog.NewProduct("Rice", types.NewMoney(100), types.NewMoney(60))
	p.UpdatedAt = base
	require.NoError(t, store.Products().Create(ctx, p))

	// Strictly earlier write loses silently.
	stale := *p
	stale.Name = "Rice (stale)"
	stale.UpdatedAt = base.Add(-time.Minute)
	applied, err := svc.ApplyExternalUpdate(ctx, &stale)
	require.NoError(t, err)
	assert.False(t, applied)

	// Equal timestamp is accepted, so replays stay idempotent.
	equal := *p
	equal.Name = "Rice (replayed)"
	equal.UpdatedAt = base
	applied, err = svc.ApplyExternalUpdate(ctx, &equal)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rice (replayed)", got.Name)
}

func TestAdjustStockClampsAtZero(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	p := catalog.NewProduct("Flour", types.NewMoney(10), types.NewMoney(6))
	p.Stock = types.NewQuantityFromInt(5)
	require.NoError(t, svc.Create(ctx, p))

	got, err := svc.AdjustStock(ctx, p.ID, types.NewQuantityFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(8), got)

	// No sufficiency check on the correction path; the floor is zero.
	got, err = svc.AdjustStock(ctx, p.ID, types.NewQuantityFromInt(-20))
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestAdjustStockFractional(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	p := catalog.NewProduct("Tomatoes (kg)", types.NewMoney(12), types.NewMoney(7))
	p.Stock = types.NewQuantityFromFloat64(2.5)
	require.NoError(t, svc.Create(ctx, p))

	got, err := svc.AdjustStock(ctx, p.ID, types.NewQuantityFromFloat64(-0.75))
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(1.75), got)
}

func TestImportMergeMatchesBarcodeThenName(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	existing := catalog.NewProduct("Cooking Oil", types.NewMoney(45), types.NewMoney(30))
	existing.Barcode = strPtr("6001")
	require.NoError(t, svc.Create(ctx, existing))

	byName := catalog.NewProduct("Sardines", types.NewMoney(9), types.NewMoney(5))
	require.NoError(t, svc.Create(ctx, byName))

	incoming := []*catalog.Product{
		// Same barcode, renamed: must update the existing row.
		func() *catalog.Product {
			p := catalog.NewProduct("Cooking Oil 1L", types.NewMoney(48), types.NewMoney(31))
			p.Barcode = strPtr("6001")
			return p
		}(),
		// No barcode, same name: matched by name.
		catalog.NewProduct("Sardines", types.NewMoney(10), types.NewMoney(5)),
		// Brand new row.
		catalog.NewProduct("Spaghetti", types.NewMoney(7), types.NewMoney(4)),
	}

	stats, err := svc.Import(ctx, catalog.ImportMerge, incoming)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 2, stats.Updated)
	assert.Equal(t, 3, stats.Total)

	renamed, err := svc.Get(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cooking Oil 1L", renamed.Name)
	assert.True(t, renamed.Price.Equal(types.NewMoney(48)))

	all, err := svc.List(ctx, catalog.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestImportReplaceWipesCatalog(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	old := catalog.NewProduct("Old Stock", types.NewMoney(1), types.NewMoney(1))
	require.NoError(t, svc.Create(ctx, old))

	stats, err := svc.Import(ctx, catalog.ImportReplace, []*catalog.Product{
		catalog.NewProduct("Fresh A", types.NewMoney(2), types.NewMoney(1)),
		catalog.NewProduct("Fresh B", types.NewMoney(3), types.NewMoney(2)),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Created)

	all, err := svc.List(ctx, catalog.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, p := range all {
		assert.NotEqual(t, "Old Stock", p.Name)
	}
}

func TestImportRejectsUnknownMode(t *testing.T) {
	svc, _ := newCatalogService(t)
	_, err := svc.Import(context.Background(), "upsert", nil)
	require.Error(t, err)
}

func TestListFilterSearch(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	milk := catalog.NewProduct("Ideal Milk", types.NewMoney(8), types.NewMoney(5))
	milk.Barcode = strPtr("7002")
	require.NoError(t, svc.Create(ctx, milk))
	require.NoError(t, svc.Create(ctx, catalog.NewProduct("Milo Tin", types.NewMoney(30), types.NewMoney(22))))

	byText, err := svc.List(ctx, catalog.ListFilter{Search: "milk"})
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, "Ideal Milk", byText[0].Name)

	byBarcode, err := svc.List(ctx, catalog.ListFilter{Search: "7002"})
	require.NoError(t, err)
	require.Len(t, byBarcode, 1)
	assert.Equal(t, "Ideal Milk", byBarcode[0].Name)
}
