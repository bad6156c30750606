package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/possync"
	"github.com/Senanu-web/bskal-enterprise/internal/pos/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestQueueAndResolve(t *testing.T) {
	s := newTestStore(t)

	id1, err := s.QueueChange(possync.ChangeOrderCreate, map[string]any{"externalId": "dev-1"})
	require.NoError(t, err)
	id2, err := s.QueueChange(possync.ChangeStockAdjust, map[string]any{"productId": 7})
	require.NoError(t, err)
	id3, err := s.QueueChange(possync.ChangeOrderStatus, map[string]any{"id": 3, "status": "completed"})
	require.NoError(t, err)

	pending, err := s.PendingChanges()
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, id1, pending[0].ChangeID)
	assert.Equal(t, string(possync.ChangeOrderCreate), pending[0].Type)

	err = s.ResolveApplied([]possync.AppliedResult{
		{ChangeID: id1, Status: possync.StatusOK},
		{ChangeID: id2, Status: possync.StatusSkipped},
		{ChangeID: id3, Status: possync.StatusFailed, Error: "unknown order"},
	})
	require.NoError(t, err)

	pending, err = s.PendingChanges()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id3, pending[0].ChangeID)
	assert.Equal(t, store.ChangeFailed, pending[0].Status)
	assert.Equal(t, "unknown order", pending[0].Error)

	failed, err := s.FailedChanges()
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, id3, failed[0].ChangeID)
}

func TestMergeSnapshotOverwritesMirror(t *testing.T) {
	s := newTestStore(t)

	p := catalog.NewProduct("Sugar 1kg", types.NewMoney(12.50), types.NewMoney(9))
	p.ID = 42
	p.Stock = types.NewQuantityFromFloat64(55.5)

	require.NoError(t, s.MergeSnapshot(possync.Snapshot{Products: []*catalog.Product{p}}))

	p.Name = "Sugar 1kg (brown)"
	p.Stock = types.NewQuantityFromFloat64(54.5)
	require.NoError(t, s.MergeSnapshot(possync.Snapshot{Products: []*catalog.Product{p}}))

	rows, err := s.Products()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Sugar 1kg (brown)", rows[0].Name)
	assert.Equal(t, types.NewQuantityFromFloat64(54.5).Int64Scaled(), rows[0].Stock)
}

func TestMergeSnapshotOrdersRoundTrip(t *testing.T) {
	s := newTestStore(t)

	ext := "dev-9"
	o := &orders.Order{
		ID:         11,
		Source:     orders.SourcePOS,
		ExternalID: &ext,
		Status:     orders.StatusDelivered,
		Total:      types.NewMoney(25),
		Customer:   orders.Customer{Name: "Ama", Phone: "024 000 1111"},
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, s.MergeSnapshot(possync.Snapshot{Orders: []*orders.Order{o}}))

	rows, err := s.Orders(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, string(orders.StatusDelivered), rows[0].Status)

	decoded, err := rows[0].DecodeOrder()
	require.NoError(t, err)
	assert.Equal(t, "Ama", decoded.Customer.Name)
	require.NotNil(t, decoded.ExternalID)
	assert.Equal(t, ext, *decoded.ExternalID)
}

func TestLowStock(t *testing.T) {
	s := newTestStore(t)

	low := catalog.NewProduct("Matches", types.NewMoney(1), types.NewMoney(0.5))
	low.ID = 1
	low.Stock = types.NewQuantityFromInt(2)
	high := catalog.NewProduct("Rice 5kg", types.NewMoney(80), types.NewMoney(60))
	high.ID = 2
	high.Stock = types.NewQuantityFromInt(40)

	require.NoError(t, s.MergeSnapshot(possync.Snapshot{Products: []*catalog.Product{low, high}}))

	rows, err := s.LowStock(types.NewQuantityFromInt(5).Int64Scaled())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Matches", rows[0].Name)
}

func TestCredentialCacheServerWins(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveCredentials([]store.CredentialRow{
		{ID: 1, Username: "ama", Name: "Ama", Role: "cashier", PasswordHash: "h1", Salt: "s1", Active: true},
		{ID: 2, Username: "kofi", Name: "Kofi", Role: "manager", PasswordHash: "h2", Salt: "s2", Active: true},
	}))

	// Next refresh removes kofi and rotates ama's hash.
	require.NoError(t, s.SaveCredentials([]store.CredentialRow{
		{ID: 1, Username: "ama", Name: "Ama", Role: "cashier", PasswordHash: "h9", Salt: "s9", Active: true},
	}))

	cred, err := s.CredentialByUsername("ama")
	require.NoError(t, err)
	assert.Equal(t, "h9", cred.PasswordHash)

	_, err = s.CredentialByUsername("kofi")
	assert.Error(t, err)
}

func TestCursorRoundTrip(t *testing.T) {
	s := newTestStore(t)

	cursor, err := s.Cursor()
	require.NoError(t, err)
	assert.Nil(t, cursor)

	serverTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetCursor(serverTime))

	cursor, err = s.Cursor()
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.True(t, cursor.Equal(serverTime))
}
