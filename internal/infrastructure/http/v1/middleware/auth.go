package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	appctx "github.com/Senanu-web/bskal-enterprise/internal/core/context"
)

// JWTValidator interface for token validation.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.StaffContext, error)
}

// Auth middleware validates JWT tokens and populates staff context.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}

		staff, err := validator.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := appctx.WithStaff(c.Request.Context(), staff)
		c.Request = c.Request.WithContext(ctx)

		// Store in gin context for easy access
		c.Set("staff_id", staff.StaffID)
		c.Set("staff_role", staff.Role)

		c.Next()
	}
}

// RequireManager allows only managers and admins through.
// Must run after Auth.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		if appctx.GetStaff(c.Request.Context()) == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		if !appctx.IsManager(c.Request.Context()) {
			_ = c.Error(apperror.NewForbidden("manager role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// POSAuth guards the sync endpoint with the shared device credential.
// POS devices are not staff; they authenticate with a provisioning token
// carried in X-POS-Token (or a Bearer header).
func POSAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			abortUnauthorized(c, "sync is not enabled on this server")
			return
		}

		presented := c.GetHeader("X-POS-Token")
		if presented == "" {
			presented, _ = bearerToken(c)
		}
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			abortUnauthorized(c, "invalid device token")
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
