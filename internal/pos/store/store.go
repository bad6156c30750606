// Package store is the POS agent's durable local state: the offline change
// queue, the product/order mirror, the cached staff credentials and the
// sync cursor. Everything lives in a single embedded SQLite file so a
// power cut loses at most the write in flight.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Senanu-web/bskal-enterprise/internal/domain/orders"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/possync"
)

// Change statuses in the local queue.
const (
	ChangePending = "pending"
	ChangeFailed  = "failed"
)

// PendingChange is one queued mutation awaiting upload.
type PendingChange struct {
	ID       uint   `gorm:"primaryKey"`
	ChangeID string `gorm:"uniqueIndex;size:64"`
	Type     string `gorm:"size:32"`
	Payload  []byte
	Status   string `gorm:"size:16;index"`
	Error    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductRow mirrors one catalog product locally.
type ProductRow struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	Category  *string
	Price     string
	Cost      string
	Stock     int64 // fixed-point, scale 10000
	Barcode   *string `gorm:"index"`
	ImageURL  *string
	UpdatedAt time.Time
}

// OrderRow mirrors one order locally. Body holds the full server JSON;
// the columns exist for listing and filtering without decoding.
type OrderRow struct {
	ID         int64 `gorm:"primaryKey"`
	Source     string
	ExternalID *string `gorm:"index"`
	Status     string  `gorm:"index"`
	Total      string
	Body       []byte
	UpdatedAt  time.Time
}

// CredentialRow caches one staff account for offline login.
type CredentialRow struct {
	ID           int64 `gorm:"primaryKey"`
	Name         string
	Username     string `gorm:"uniqueIndex"`
	Role         string
	BranchID     int64
	PasswordHash string
	Salt         string
	Active       bool
}

// SyncState is a single-row table carrying the last server cursor.
type SyncState struct {
	ID       uint `gorm:"primaryKey"`
	Cursor   *time.Time
	SyncedAt *time.Time
}

// Store wraps the SQLite handle.
type Store struct {
	db *gorm.DB
}

// Open creates or opens the agent database in dir.
func Open(dir string) (*Store, error) {
	path := filepath.Join(dir, "pos.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := db.AutoMigrate(
		&PendingChange{},
		&ProductRow{},
		&OrderRow{},
		&CredentialRow{},
		&SyncState{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// QueueChange appends a mutation to the offline queue and returns its
// client-generated change id.
func (s *Store) QueueChange(changeType possync.ChangeType, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	change := PendingChange{
		ChangeID: uuid.New().String(),
		Type:     string(changeType),
		Payload:  body,
		Status:   ChangePending,
	}
	if err := s.db.Create(&change).Error; err != nil {
		return "", fmt.Errorf("queue change: %w", err)
	}
	return change.ChangeID, nil
}

// PendingChanges returns queued changes oldest first. Failed changes are
// included: they stay queued for operator review and are retried on every
// sync until resolved.
func (s *Store) PendingChanges() ([]PendingChange, error) {
	var out []PendingChange
	err := s.db.Order("id asc").Find(&out).Error
	return out, err
}

// FailedChanges returns only changes the server rejected.
func (s *Store) FailedChanges() ([]PendingChange, error) {
	var out []PendingChange
	err := s.db.Where("status = ?", ChangeFailed).Order("id asc").Find(&out).Error
	return out, err
}

// ResolveApplied prunes the queue from the server's per-change results:
// ok and skipped entries are deleted, failed ones are kept and annotated.
func (s *Store) ResolveApplied(results []possync.AppliedResult) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, r := range results {
			switch r.Status {
			case possync.StatusOK, possync.StatusSkipped:
				if err := tx.Where("change_id = ?", r.ChangeID).Delete(&PendingChange{}).Error; err != nil {
					return err
				}
			case possync.StatusFailed:
				err := tx.Model(&PendingChange{}).
					Where("change_id = ?", r.ChangeID).
					Updates(map[string]any{"status": ChangeFailed, "error": r.Error}).Error
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// MergeSnapshot folds the server snapshot into the local mirror. The
// server is authoritative: incoming rows overwrite local ones.
func (s *Store) MergeSnapshot(snap possync.Snapshot) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, p := range snap.Products {
			row := ProductRow{
				ID:        p.ID,
				Name:      p.Name,
				Category:  p.Category,
				Price:     p.Price.String(),
				Cost:      p.Cost.String(),
				Stock:     p.Stock.Int64Scaled(),
				Barcode:   p.Barcode,
				ImageURL:  p.ImageURL,
				UpdatedAt: p.UpdatedAt,
			}
			if err := tx.Save(&row).Error; err != nil {
				return fmt.Errorf("merge product %d: %w", p.ID, err)
			}
		}
		for _, o := range snap.Orders {
			body, err := json.Marshal(o)
			if err != nil {
				return fmt.Errorf("marshal order %d: %w", o.ID, err)
			}
			row := OrderRow{
				ID:         o.ID,
				Source:     o.Source,
				ExternalID: o.ExternalID,
				Status:     string(o.Status),
				Total:      o.Total.String(),
				Body:       body,
				UpdatedAt:  o.UpdatedAt,
			}
			if err := tx.Save(&row).Error; err != nil {
				return fmt.Errorf("merge order %d: %w", o.ID, err)
			}
		}
		return nil
	})
}

// Products returns the mirrored catalog.
func (s *Store) Products() ([]ProductRow, error) {
	var out []ProductRow
	err := s.db.Order("name asc").Find(&out).Error
	return out, err
}

// LowStock returns mirrored products with stock at or below the
// fixed-point scaled threshold.
func (s *Store) LowStock(scaledThreshold int64) ([]ProductRow, error) {
	var out []ProductRow
	err := s.db.Where("stock <= ?", scaledThreshold).Order("stock asc").Find(&out).Error
	return out, err
}

// Orders returns mirrored orders, newest first.
func (s *Store) Orders(limit int) ([]OrderRow, error) {
	q := s.db.Order("updated_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []OrderRow
	err := q.Find(&out).Error
	return out, err
}

// DecodeOrder unpacks the stored server JSON.
func (r OrderRow) DecodeOrder() (*orders.Order, error) {
	var o orders.Order
	if err := json.Unmarshal(r.Body, &o); err != nil {
		return nil, fmt.Errorf("decode order %d: %w", r.ID, err)
	}
	return &o, nil
}

// SaveCredentials replaces the offline credential cache with the server
// copy. The server always wins when reachable.
func (s *Store) SaveCredentials(creds []CredentialRow) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&CredentialRow{}).Error; err != nil {
			return err
		}
		for i := range creds {
			if err := tx.Create(&creds[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CredentialByUsername looks up a cached staff credential for offline
// login.
func (s *Store) CredentialByUsername(username string) (*CredentialRow, error) {
	var row CredentialRow
	err := s.db.Where("username = ?", username).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Cursor returns the last server time received, nil before the first sync.
func (s *Store) Cursor() (*time.Time, error) {
	state, err := s.state()
	if err != nil {
		return nil, err
	}
	return state.Cursor, nil
}

// SetCursor records the server time of a completed sync.
func (s *Store) SetCursor(serverTime time.Time) error {
	state, err := s.state()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	state.Cursor = &serverTime
	state.SyncedAt = &now
	return s.db.Save(state).Error
}

func (s *Store) state() (*SyncState, error) {
	var state SyncState
	err := s.db.First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		state = SyncState{ID: 1}
		if err := s.db.Create(&state).Error; err != nil {
			return nil, err
		}
		return &state, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}
