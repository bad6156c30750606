// Package syncer drives the POS agent's periodic exchange with the
// server: upload the local change queue, prune it from the per-change
// results, fold the snapshot into the mirror and advance the cursor.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/domain/possync"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/dto"
	"github.com/Senanu-web/bskal-enterprise/internal/pos/store"
	"github.com/Senanu-web/bskal-enterprise/pkg/logger"
)

// DefaultInterval is the sync period when none is configured.
const DefaultInterval = 30 * time.Second

// Server is the remote half of the exchange.
type Server interface {
	Sync(ctx context.Context, req possync.Request) (*possync.Response, error)
	StaffDirectory(ctx context.Context) ([]dto.StaffCredential, error)
}

// Local is the durable device state the syncer reads and writes.
type Local interface {
	PendingChanges() ([]store.PendingChange, error)
	ResolveApplied(results []possync.AppliedResult) error
	MergeSnapshot(snap possync.Snapshot) error
	SaveCredentials(creds []store.CredentialRow) error
	Cursor() (*time.Time, error)
	SetCursor(serverTime time.Time) error
}

// Syncer runs the exchange on a ticker. SyncNow can also be called
// directly, e.g. after the operator queues a sale; overlapping runs are
// collapsed to one.
type Syncer struct {
	server   Server
	local    Local
	interval time.Duration
	log      *logger.Logger

	inFlight atomic.Bool
}

// New builds a Syncer. A non-positive interval falls back to
// DefaultInterval.
func New(server Server, local Local, interval time.Duration, log *logger.Logger) *Syncer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logger.Default()
	}
	return &Syncer{
		server:   server,
		local:    local,
		interval: interval,
		log:      log.WithComponent("pos.syncer"),
	}
}

// Run syncs immediately, then on every tick until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context) {
	if err := s.SyncNow(ctx); err != nil {
		s.log.Warnw("sync failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SyncNow(ctx); err != nil {
				s.log.Warnw("sync failed", "error", err)
			}
		}
	}
}

// ErrSyncInFlight is returned when a run is already in progress.
var ErrSyncInFlight = errors.New("sync already in progress")

// SyncNow performs one full exchange. If a run is already in flight it
// returns ErrSyncInFlight without doing anything.
func (s *Syncer) SyncNow(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrSyncInFlight
	}
	defer s.inFlight.Store(false)

	req, err := s.buildRequest()
	if err != nil {
		return err
	}

	resp, err := s.server.Sync(ctx, req)
	if err != nil {
		return err
	}

	if err := s.local.ResolveApplied(resp.Applied); err != nil {
		return err
	}
	if err := s.local.MergeSnapshot(resp.Snapshot); err != nil {
		return err
	}
	if err := s.local.SetCursor(resp.ServerTime); err != nil {
		return err
	}

	s.logOutcome(resp)

	// Credential refresh is best effort; the cached copy keeps working.
	if err := s.refreshCredentials(ctx); err != nil {
		s.log.Warnw("credential refresh failed", "error", err)
	}
	return nil
}

func (s *Syncer) buildRequest() (possync.Request, error) {
	cursor, err := s.local.Cursor()
	if err != nil {
		return possync.Request{}, err
	}
	pending, err := s.local.PendingChanges()
	if err != nil {
		return possync.Request{}, err
	}

	changes := make([]possync.Change, 0, len(pending))
	for _, p := range pending {
		changes = append(changes, possync.Change{
			ChangeID: p.ChangeID,
			Type:     possync.ChangeType(p.Type),
			Payload:  json.RawMessage(p.Payload),
		})
	}
	return possync.Request{Since: cursor, Changes: changes}, nil
}

func (s *Syncer) refreshCredentials(ctx context.Context) error {
	creds, err := s.server.StaffDirectory(ctx)
	if err != nil {
		return err
	}
	rows := make([]store.CredentialRow, 0, len(creds))
	for _, c := range creds {
		rows = append(rows, store.CredentialRow{
			ID:           c.ID,
			Name:         c.Name,
			Username:     c.Username,
			Role:         c.Role,
			BranchID:     c.BranchID,
			PasswordHash: c.PasswordHash,
			Salt:         c.Salt,
			Active:       c.Active,
		})
	}
	return s.local.SaveCredentials(rows)
}

func (s *Syncer) logOutcome(resp *possync.Response) {
	var ok, skipped, failed int
	for _, r := range resp.Applied {
		switch r.Status {
		case possync.StatusOK:
			ok++
		case possync.StatusSkipped:
			skipped++
		case possync.StatusFailed:
			failed++
		}
	}
	s.log.Infow("sync complete",
		"applied", ok,
		"skipped", skipped,
		"failed", failed,
		"products", len(resp.Snapshot.Products),
		"orders", len(resp.Snapshot.Orders),
		"server_time", resp.ServerTime,
	)
	if failed > 0 {
		s.log.Warnw("changes rejected by server, kept queued for review", "count", failed)
	}
}
