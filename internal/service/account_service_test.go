package service

import (
	"context"
	"testing"
	"time"

	"wikiadmin/internal/auth"
	"wikiadmin/internal/cache"
	"wikiadmin/internal/models"
	"wikiadmin/internal/repository"
	"wikiadmin/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newAccountService(t *testing.T) (*AccountService, *gorm.DB, *auth.Codec) {
	t.Helper()
	db := testutil.OpenDB(t)
	codec := auth.NewCodec("test-secret", "wikiadmin-api", "wikiadmin-client", time.Hour)
	svc := NewAccountService(repository.NewUserRepository(db), codec)
	svc.cost = bcrypt.MinCost
	return svc, db, codec
}

func TestAccountService_Login(t *testing.T) {
	svc, db, codec := newAccountService(t)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin", models.RoleSuperAdmin, "secret123")
	testutil.CreateUser(t, db, "plain", models.RoleUser, "secret123")
	banned := testutil.CreateUser(t, db, "banned", models.RoleReviewer, "secret123")
	require.NoError(t, db.Model(banned).Update("status", models.UserStatusBanned).Error)

	t.Run("success records the login", func(t *testing.T) {
		res, err := svc.Login(ctx, LoginInput{Username: "admin", Password: "secret123", IP: "10.0.0.1"})
		require.NoError(t, err)
		assert.Equal(t, admin.ID, res.User.ID)
		assert.Equal(t, models.RoleSuperAdmin, res.User.Role)

		claims, err := codec.Decode(res.Token)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, claims.ID)
		assert.True(t, claims.IsAdmin)

		var stored models.User
		require.NoError(t, db.First(&stored, admin.ID).Error)
		assert.Equal(t, 1, stored.LoginCount)
		assert.Equal(t, "10.0.0.1", stored.LastLoginIP)
		assert.NotNil(t, stored.LastLoginAt)
	})

	tests := []struct {
		name string
		in   LoginInput
		code string
	}{
		{"missing password", LoginInput{Username: "admin"}, models.CodeValidation},
		{"unknown user", LoginInput{Username: "ghost", Password: "secret123"}, models.CodeUnauthorized},
		{"wrong password", LoginInput{Username: "admin", Password: "nope-nope"}, models.CodeUnauthorized},
		{"normal user", LoginInput{Username: "plain", Password: "secret123"}, models.CodeForbidden},
		{"banned admin", LoginInput{Username: "banned", Password: "secret123"}, models.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.in)
			requireCode(t, err, tt.code)
		})
	}
}

func TestAccountService_Logout(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer cache.SetClient(nil)

	svc, db, codec := newAccountService(t)
	ctx := context.Background()
	testutil.CreateUser(t, db, "admin", models.RoleSuperAdmin, "secret123")

	res, err := svc.Login(ctx, LoginInput{Username: "admin", Password: "secret123"})
	require.NoError(t, err)
	claims, err := codec.Decode(res.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	revoked, err := cache.IsRevoked(ctx, claims.RegisteredClaims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAccountService_CreateEnforcesUniqueness(t *testing.T) {
	svc, db, _ := newAccountService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateAccountInput{Username: "alice", Password: "secret123", Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, CreateAccountInput{Username: "alice", Password: "secret123"})
	requireCode(t, err, models.CodeConflict)

	_, err = svc.CreateUser(ctx, CreateAccountInput{Username: "alice2", Password: "secret123", Email: "alice@example.com"})
	requireCode(t, err, models.CodeConflict)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "alice").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = svc.CreateUser(ctx, CreateAccountInput{Username: "x", Password: "secret123"})
	requireCode(t, err, models.CodeValidation)
	_, err = svc.CreateUser(ctx, CreateAccountInput{Username: "bobby", Password: "123"})
	requireCode(t, err, models.CodeValidation)
}

func TestAccountService_CreateUserForcesRole(t *testing.T) {
	svc, _, _ := newAccountService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateAccountInput{Username: "sneaky", Password: "secret123", Role: models.RoleSuperAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)

	_, err = svc.CreateAdmin(ctx, CreateAccountInput{Username: "admin2", Password: "secret123", Role: models.RoleUser})
	requireCode(t, err, models.CodeValidation)

	a, err := svc.CreateAdmin(ctx, CreateAccountInput{Username: "admin2", Password: "secret123", Role: models.RoleReviewer})
	require.NoError(t, err)
	assert.Equal(t, models.RoleReviewer, a.Role)
	assert.NotEqual(t, "secret123", a.Password)
}

func TestAccountService_TargetRoleRestriction(t *testing.T) {
	svc, db, _ := newAccountService(t)
	ctx := context.Background()

	reviewer := testutil.CreateUser(t, db, "reviewer", models.RoleReviewer, "secret123")
	user := testutil.CreateUser(t, db, "normal", models.RoleUser, "secret123")

	_, err := svc.UpdateUser(ctx, reviewer.ID, UpdateAccountInput{Nickname: ptr("x")})
	requireCode(t, err, models.CodeForbidden)
	requireCode(t, svc.DeleteUser(ctx, reviewer.ID), models.CodeForbidden)

	_, err = svc.UpdateUser(ctx, user.ID, UpdateAccountInput{Role: ptr(models.RoleSuperAdmin)})
	requireCode(t, err, models.CodeForbidden)

	updated, err := svc.UpdateUser(ctx, user.ID, UpdateAccountInput{Nickname: ptr("Normal Person")})
	require.NoError(t, err)
	assert.Equal(t, "Normal Person", updated.Nickname)

	var stored models.User
	require.NoError(t, db.First(&stored, reviewer.ID).Error)
	assert.Empty(t, stored.Nickname)

	_, err = svc.GetAdmin(ctx, user.ID)
	requireCode(t, err, models.CodeNotFound)
}

func TestAccountService_StatusShield(t *testing.T) {
	svc, db, _ := newAccountService(t)
	ctx := context.Background()

	root := testutil.CreateUser(t, db, "root", models.RoleSuperAdmin, "secret123")
	other := testutil.CreateUser(t, db, "other", models.RoleSuperAdmin, "secret123")
	reviewer := testutil.CreateUser(t, db, "reviewer", models.RoleReviewer, "secret123")
	user := testutil.CreateUser(t, db, "normal", models.RoleUser, "secret123")

	_, err := svc.SetStatus(ctx, reviewer, other.ID, models.UserStatusBanned)
	requireCode(t, err, models.CodeForbidden)

	got, err := svc.SetStatus(ctx, reviewer, user.ID, models.UserStatusBanned)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusBanned, got.Status)

	got, err = svc.SetStatus(ctx, root, other.ID, models.UserStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusInactive, got.Status)

	_, err = svc.SetStatus(ctx, root, other.ID, "GONE")
	requireCode(t, err, models.CodeValidation)
}

func TestAccountService_AdminLifecycle(t *testing.T) {
	svc, db, _ := newAccountService(t)
	ctx := context.Background()

	root := testutil.CreateUser(t, db, "root", models.RoleSuperAdmin, "secret123")
	reviewer := testutil.CreateUser(t, db, "reviewer", models.RoleReviewer, "secret123")
	testutil.CreateUser(t, db, "normal", models.RoleUser, "secret123")

	page, err := svc.ListAdmins(ctx, AccountListInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	_, err = svc.UpdateAdmin(ctx, reviewer.ID, UpdateAccountInput{Role: ptr(models.RoleUser)})
	requireCode(t, err, models.CodeValidation)

	updated, err := svc.UpdateAdmin(ctx, reviewer.ID, UpdateAccountInput{Password: ptr("newpass1"), Email: ptr("rev@wiki.example")})
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("newpass1")))
	assert.Equal(t, "rev@wiki.example", updated.EmailValue())

	requireCode(t, svc.DeleteAdmin(ctx, root, root.ID), models.CodeForbidden)
	require.NoError(t, svc.DeleteAdmin(ctx, root, reviewer.ID))

	page, err = svc.ListAdmins(ctx, AccountListInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestAccountService_ProfileAndPassword(t *testing.T) {
	svc, db, _ := newAccountService(t)
	ctx := context.Background()

	me := testutil.CreateUser(t, db, "me", models.RoleReviewer, "secret123")
	testutil.CreateUser(t, db, "taken", models.RoleUser, "secret123")

	_, err := svc.UpdateProfile(ctx, me.ID, ProfileInput{Email: ptr("taken@example.com")})
	requireCode(t, err, models.CodeConflict)

	view, err := svc.UpdateProfile(ctx, me.ID, ProfileInput{Nickname: ptr("Me"), Bio: ptr("hello")})
	require.NoError(t, err)
	assert.Equal(t, "Me", view.Nickname)
	assert.Equal(t, "hello", view.Bio)

	requireCode(t, svc.ChangePassword(ctx, me.ID, ChangePasswordInput{OldPassword: "wrong-one", NewPassword: "another1"}), models.CodeValidation)
	requireCode(t, svc.ChangePassword(ctx, me.ID, ChangePasswordInput{OldPassword: "secret123", NewPassword: "secret123"}), models.CodeValidation)
	requireCode(t, svc.ChangePassword(ctx, me.ID, ChangePasswordInput{OldPassword: "secret123", NewPassword: "abc"}), models.CodeValidation)
	require.NoError(t, svc.ChangePassword(ctx, me.ID, ChangePasswordInput{OldPassword: "secret123", NewPassword: "another1"}))

	_, err = svc.Login(ctx, LoginInput{Username: "me", Password: "another1"})
	require.NoError(t, err)
}
