package staff_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	appctx "github.com/Senanu-web/bskal-enterprise/internal/core/context"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/staff"
	"github.com/Senanu-web/bskal-enterprise/internal/infrastructure/storage/memory"
)

func newStaffService(t *testing.T) *staff.Service {
	t.Helper()
	store := memory.NewStore()
	jwtSvc := staff.NewJWTService(staff.DefaultJWTConfig("test-secret"))
	return staff.NewService(store.Staff(), jwtSvc, memory.TxManager{}, store.Audit())
}

func createAccount(t *testing.T, svc *staff.Service, username, password, role string) *staff.Staff {
	t.Helper()
	member := &staff.Staff{Name: "Kofi Mensah", Username: username, Role: role, BranchID: 1}
	require.NoError(t, svc.Create(context.Background(), member, password))
	return member
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, salt, err := staff.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEmpty(t, salt)

	assert.True(t, staff.VerifyPassword("s3cret-pass", hash, salt))
	assert.False(t, staff.VerifyPassword("wrong", hash, salt))

	// A second hash of the same password uses a fresh salt.
	hash2, salt2, err := staff.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, salt, salt2)
	assert.NotEqual(t, hash, hash2)
}

func TestLogin(t *testing.T) {
	svc := newStaffService(t)
	ctx := context.Background()
	createAccount(t, svc, "kofi", "password1", appctx.RoleCashier)

	session, err := svc.Login(ctx, "kofi", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))
	assert.Equal(t, "kofi", session.Staff.Username)

	// Wrong password and unknown user return the same message.
	_, badPass := svc.Login(ctx, "kofi", "nope")
	require.Error(t, badPass)
	_, badUser := svc.Login(ctx, "ghost", "password1")
	require.Error(t, badUser)
	assert.Equal(t, badPass.Error(), badUser.Error())
}

func TestLoginDeactivatedAccount(t *testing.T) {
	svc := newStaffService(t)
	ctx := context.Background()
	member := createAccount(t, svc, "ama", "password1", appctx.RoleManager)

	require.NoError(t, svc.Deactivate(ctx, member.ID))
	_, err := svc.Login(ctx, "ama", "password1")
	require.Error(t, err)
}

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	svc := newStaffService(t)
	createAccount(t, svc, "kofi", "password1", appctx.RoleCashier)

	err := svc.Create(context.Background(),
		&staff.Staff{Name: "Other", Username: "kofi", Role: appctx.RoleCashier}, "password2")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestChangePassword(t *testing.T) {
	svc := newStaffService(t)
	ctx := context.Background()
	member := createAccount(t, svc, "kofi", "oldpassword", appctx.RoleCashier)

	require.NoError(t, svc.ChangePassword(ctx, member.ID, "newpassword"))

	_, err := svc.Login(ctx, "kofi", "oldpassword")
	require.Error(t, err)
	_, err = svc.Login(ctx, "kofi", "newpassword")
	require.NoError(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	jwtSvc := staff.NewJWTService(staff.DefaultJWTConfig("test-secret"))
	member := &staff.Staff{ID: 42, Name: "Kofi", Username: "kofi", Role: appctx.RoleManager, BranchID: 3}

	token, expiresAt, err := jwtSvc.GenerateToken(member)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now().Add(11*time.Hour)))

	sc, err := jwtSvc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sc.StaffID)
	assert.Equal(t, appctx.RoleManager, sc.Role)
	assert.Equal(t, int64(3), sc.BranchID)
}

func TestJWTRejectsTamperedAndForeignTokens(t *testing.T) {
	jwtSvc := staff.NewJWTService(staff.DefaultJWTConfig("test-secret"))
	member := &staff.Staff{ID: 1, Username: "kofi", Role: appctx.RoleCashier}

	token, _, err := jwtSvc.GenerateToken(member)
	require.NoError(t, err)

	_, err = jwtSvc.ValidateToken(token + "x")
	require.Error(t, err)

	other := staff.NewJWTService(staff.DefaultJWTConfig("different-secret"))
	_, err = other.ValidateToken(token)
	require.Error(t, err)
}

func TestJWTExpiry(t *testing.T) {
	cfg := staff.DefaultJWTConfig("test-secret")
	cfg.TokenTTL = -time.Minute
	jwtSvc := staff.NewJWTService(cfg)

	token, _, err := jwtSvc.GenerateToken(&staff.Staff{ID: 1, Username: "kofi", Role: appctx.RoleCashier})
	require.NoError(t, err)

	_, err = jwtSvc.ValidateToken(token)
	require.Error(t, err)
}
