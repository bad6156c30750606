package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "github.com/Senanu-web/bskal-enterprise/internal/core/context"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/http/v1/middleware"
)

type stubValidator struct {
	staff *appctx.StaffContext
}

func (v stubValidator) ValidateToken(token string) (*appctx.StaffContext, error) {
	if v.staff == nil {
		return nil, errors.New("invalid token")
	}
	return v.staff, nil
}

func guardedRouter(validator middleware.JWTValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())

	staff := r.Group("/", middleware.Auth(validator))
	staff.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"staffId": appctx.GetStaffID(c.Request.Context())})
	})
	staff.GET("/managed", middleware.RequireManager(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func get(r *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthPopulatesStaffContext(t *testing.T) {
	r := guardedRouter(stubValidator{staff: &appctx.StaffContext{StaffID: 7, Role: appctx.RoleCashier}})

	w := get(r, "/me", map[string]string{"Authorization": "Bearer token"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"staffId":7`)
}

func TestAuthRejectsMissingOrBadHeader(t *testing.T) {
	r := guardedRouter(stubValidator{staff: &appctx.StaffContext{StaffID: 7, Role: appctx.RoleCashier}})

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", map[string]string{"Authorization": "token-without-scheme"}).Code)

	bad := guardedRouter(stubValidator{})
	assert.Equal(t, http.StatusUnauthorized, get(bad, "/me", map[string]string{"Authorization": "Bearer expired"}).Code)
}

func TestRequireManagerRoles(t *testing.T) {
	tests := []struct {
		role string
		want int
	}{
		{appctx.RoleManager, http.StatusOK},
		{appctx.RoleAdmin, http.StatusOK},
		{appctx.RoleCashier, http.StatusForbidden},
	}
	for _, tt := range tests {
		r := guardedRouter(stubValidator{staff: &appctx.StaffContext{StaffID: 1, Role: tt.role}})
		w := get(r, "/managed", map[string]string{"Authorization": "Bearer token"})
		assert.Equal(t, tt.want, w.Code, "role %s", tt.role)
	}
}

func posRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/sync", middleware.POSAuth(token), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestPOSAuth(t *testing.T) {
	r := posRouter("device-secret")

	assert.Equal(t, http.StatusOK, get(r, "/sync", map[string]string{"X-POS-Token": "device-secret"}).Code)
	assert.Equal(t, http.StatusOK, get(r, "/sync", map[string]string{"Authorization": "Bearer device-secret"}).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/sync", map[string]string{"X-POS-Token": "wrong"}).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/sync", nil).Code)
}

func TestPOSAuthDisabledWithoutToken(t *testing.T) {
	r := posRouter("")
	assert.Equal(t, http.StatusUnauthorized, get(r, "/sync", map[string]string{"X-POS-Token": ""}).Code)
}
