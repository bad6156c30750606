package syncer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senanu-web/bskal-enterprise/internal/domain/possync"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/dto"
	"github.com/Senanu-web/bskal-enterprise/internal/pos/store"
	"github.com/Senanu-web/bskal-enterprise/internal/pos/syncer"
)

type fakeServer struct {
	mu        sync.Mutex
	requests  []possync.Request
	response  *possync.Response
	creds     []dto.StaffCredential
	block     chan struct{}
	started   chan struct{}
	startOnce sync.Once
}

func (f *fakeServer) Sync(ctx context.Context, req possync.Request) (*possync.Response, error) {
	if f.started != nil {
		f.startOnce.Do(func() { close(f.started) })
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.response, nil
}

func (f *fakeServer) StaffDirectory(ctx context.Context) ([]dto.StaffCredential, error) {
	return f.creds, nil
}

type fakeLocal struct {
	pending  []store.PendingChange
	resolved []possync.AppliedResult
	merged   []possync.Snapshot
	creds    []store.CredentialRow
	cursor   *time.Time
}

func (f *fakeLocal) PendingChanges() ([]store.PendingChange, error) { return f.pending, nil }

func (f *fakeLocal) ResolveApplied(results []possync.AppliedResult) error {
	f.resolved = append(f.resolved, results...)
	return nil
}

func (f *fakeLocal) MergeSnapshot(snap possync.Snapshot) error {
	f.merged = append(f.merged, snap)
	return nil
}

func (f *fakeLocal) SaveCredentials(creds []store.CredentialRow) error {
	f.creds = creds
	return nil
}

func (f *fakeLocal) Cursor() (*time.Time, error) { return f.cursor, nil }

func (f *fakeLocal) SetCursor(serverTime time.Time) error {
	f.cursor = &serverTime
	return nil
}

func TestSyncNowExchangesState(t *testing.T) {
	serverTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	server := &fakeServer{
		response: &possync.Response{
			OK:         true,
			ServerTime: serverTime,
			Applied: []possync.AppliedResult{
				{ChangeID: "c1", Status: possync.StatusOK},
			},
		},
		creds: []dto.StaffCredential{
			{ID: 1, Username: "ama", PasswordHash: "h1", Salt: "s1", Active: true},
		},
	}
	local := &fakeLocal{
		pending: []store.PendingChange{
			{ChangeID: "c1", Type: string(possync.ChangeOrderCreate), Payload: []byte(`{"externalId":"dev-1"}`), Status: store.ChangePending},
		},
	}

	s := syncer.New(server, local, time.Minute, nil)
	require.NoError(t, s.SyncNow(context.Background()))

	require.Len(t, server.requests, 1)
	assert.Nil(t, server.requests[0].Since)
	require.Len(t, server.requests[0].Changes, 1)
	assert.Equal(t, "c1", server.requests[0].Changes[0].ChangeID)
	assert.Equal(t, possync.ChangeOrderCreate, server.requests[0].Changes[0].Type)

	require.Len(t, local.resolved, 1)
	assert.Equal(t, possync.StatusOK, local.resolved[0].Status)
	require.Len(t, local.merged, 1)
	require.NotNil(t, local.cursor)
	assert.True(t, local.cursor.Equal(serverTime))

	require.Len(t, local.creds, 1)
	assert.Equal(t, "ama", local.creds[0].Username)
}

func TestSyncNowSendsCursor(t *testing.T) {
	cursor := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	server := &fakeServer{
		response: &possync.Response{OK: true, ServerTime: cursor.Add(time.Hour)},
	}
	local := &fakeLocal{cursor: &cursor}

	s := syncer.New(server, local, time.Minute, nil)
	require.NoError(t, s.SyncNow(context.Background()))

	require.Len(t, server.requests, 1)
	require.NotNil(t, server.requests[0].Since)
	assert.True(t, server.requests[0].Since.Equal(cursor))
}

func TestSyncNowSingleFlight(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	server := &fakeServer{
		response: &possync.Response{OK: true, ServerTime: time.Now().UTC()},
		block:    block,
		started:  started,
	}
	local := &fakeLocal{}
	s := syncer.New(server, local, time.Minute, nil)

	done := make(chan error, 1)
	go func() {
		done <- s.SyncNow(context.Background())
	}()

	// Wait for the first run to reach the blocked server call.
	<-started
	assert.ErrorIs(t, s.SyncNow(context.Background()), syncer.ErrSyncInFlight)

	close(block)
	require.NoError(t, <-done)

	// The guard is released after the run completes.
	require.NoError(t, s.SyncNow(context.Background()))
}
