package staff

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/core/tx"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/audit"
	"github.com/Senanu-web/bskal-enterprise/pkg/logger"
)

// Service provides business logic for staff accounts.
type Service struct {
	repo      Repository
	jwt       *JWTService
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates a new staff service.
func NewService(repo Repository, jwtService *JWTService, txManager tx.Manager, recorder audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		jwt:       jwtService,
		txManager: txManager,
		audit:     recorder,
	}
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Staff     *Staff    `json:"staff"`
}

// Login verifies credentials and issues a session token.
// Wrong username and wrong password return the same error.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	member, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid username or password")
		}
		return nil, err
	}
	if !member.Active {
		return nil, apperror.NewUnauthorized("account is deactivated")
	}
	if !VerifyPassword(password, member.PasswordHash, member.Salt) {
		return nil, apperror.NewUnauthorized("invalid username or password")
	}

	token, expiresAt, err := s.jwt.GenerateToken(member)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	logger.Info(ctx, "staff login", "username", username, "role", member.Role)
	return &Session{Token: token, ExpiresAt: expiresAt, Staff: member}, nil
}

// Create registers a new staff account.
func (s *Service) Create(ctx context.Context, member *Staff, password string) error {
	if err := member.Validate(ctx); err != nil {
		return err
	}
	if len(password) < 6 {
		return apperror.NewValidation("password must be at least 6 characters").
			WithDetail("field", "password")
	}

	hash, salt, err := HashPassword(password)
	if err != nil {
		return err
	}
	member.PasswordHash = hash
	member.Salt = salt
	member.Active = true
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByUsername(ctx, member.Username); err == nil {
			return apperror.NewDuplicate("staff", "username", member.Username)
		} else if !apperror.IsNotFound(err) {
			return err
		}

		if err := s.repo.Create(ctx, member); err != nil {
			return fmt.Errorf("create staff: %w", err)
		}
		return s.audit.Record(ctx, audit.Entry{
			EntityType: "staff",
			EntityID:   strconv.FormatInt(member.ID, 10),
			Action:     audit.ActionCreate,
			Changes:    map[string]any{"username": member.Username, "role": member.Role},
		})
	})
}

// Update modifies name, role and branch; credentials go through ChangePassword.
func (s *Service) Update(ctx context.Context, member *Staff) error {
	if err := member.Validate(ctx); err != nil {
		return err
	}
	member.UpdatedAt = time.Now().UTC()

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, member.ID)
		if err != nil {
			return err
		}
		member.PasswordHash = existing.PasswordHash
		member.Salt = existing.Salt

		if err := s.repo.Update(ctx, member); err != nil {
			return fmt.Errorf("update staff: %w", err)
		}
		return s.audit.Record(ctx, audit.Entry{
			EntityType: "staff",
			EntityID:   strconv.FormatInt(member.ID, 10),
			Action:     audit.ActionUpdate,
			Changes:    map[string]any{"role": member.Role, "branch_id": member.BranchID},
		})
	})
}

// ChangePassword rehashes and stores a new password.
func (s *Service) ChangePassword(ctx context.Context, staffID int64, newPassword string) error {
	if len(newPassword) < 6 {
		return apperror.NewValidation("password must be at least 6 characters").
			WithDetail("field", "password")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		member, err := s.repo.GetByID(ctx, staffID)
		if err != nil {
			return err
		}
		hash, salt, err := HashPassword(newPassword)
		if err != nil {
			return err
		}
		member.PasswordHash = hash
		member.Salt = salt
		member.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(ctx, member); err != nil {
			return fmt.Errorf("change password: %w", err)
		}
		return s.audit.Record(ctx, audit.Entry{
			EntityType: "staff",
			EntityID:   strconv.FormatInt(staffID, 10),
			Action:     audit.ActionUpdate,
			Changes:    map[string]any{"password": "changed"},
		})
	})
}

// Deactivate disables an account without deleting its history.
func (s *Service) Deactivate(ctx context.Context, staffID int64) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Deactivate(ctx, staffID); err != nil {
			return fmt.Errorf("deactivate staff: %w", err)
		}
		return s.audit.Record(ctx, audit.Entry{
			EntityType: "staff",
			EntityID:   strconv.FormatInt(staffID, 10),
			Action:     audit.ActionDelete,
			Changes:    map[string]any{"active": false},
		})
	})
}

// Get retrieves a staff member by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Staff, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves all staff accounts.
func (s *Service) List(ctx context.Context) ([]*Staff, error) {
	return s.repo.List(ctx)
}

// Directory returns the credential snapshot the POS caches for offline
// login. The server copy always wins when reachable.
func (s *Service) Directory(ctx context.Context) ([]*Staff, error) {
	return s.repo.List(ctx)
}
