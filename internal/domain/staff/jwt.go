package staff

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "github.com/Senanu-web/bskal-enterprise/internal/core/context"
)

// JWTConfig holds session token configuration.
type JWTConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// DefaultJWTConfig returns default session token configuration.
// Sessions last a full working day plus margin.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:   secret,
		Issuer:   "bskal-enterprise",
		TokenTTL: 12 * time.Hour,
	}
}

// Claims represents staff session token claims.
type Claims struct {
	jwt.RegisteredClaims
	StaffID  int64  `json:"sid"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
	BranchID int64  `json:"bid,omitempty"`
}

// JWTService signs and validates staff session tokens.
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// GenerateToken issues a signed session token for a staff member.
func (s *JWTService) GenerateToken(member *Staff) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.TokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   member.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		StaffID:  member.ID,
		Name:     member.Name,
		Username: member.Username,
		Role:     member.Role,
		BranchID: member.BranchID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a session token and returns the staff context.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.StaffContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &appctx.StaffContext{
		StaffID:  claims.StaffID,
		Name:     claims.Name,
		Role:     claims.Role,
		BranchID: claims.BranchID,
	}, nil
}
