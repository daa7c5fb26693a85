package service

import (
	"context"
	"testing"

	"github.com/smallbiznis/wardboard/internal/auth/domain"
	"github.com/smallbiznis/wardboard/internal/auth/password"
	"github.com/smallbiznis/wardboard/internal/auth/repository"
	"github.com/smallbiznis/wardboard/internal/clock"
	"github.com/smallbiznis/wardboard/internal/config"
	"github.com/smallbiznis/wardboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testParams = password.Params{Memory: 1024, Time: 1, Threads: 1, KeyLen: 16, SaltLen: 8}

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	svc, err := NewService(Params{
		DB:    testutil.OpenDB(t),
		Log:   zaptest.NewLogger(t),
		GenID: testutil.NewNode(t),
		Clock: clock.NewFakeClock(testutil.Epoch),
		Config: config.Config{
			DefaultAdminUsername: "admin",
			DefaultAdminPassword: "admin",
		},
		Repo:   repository.Provide(),
		Hasher: password.NewHasher(testParams),
	})
	require.NoError(t, err)
	return svc
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, domain.CreateUserRequest{Username: "nurse1", Password: "correct-password", Role: domain.RoleOperator})
	require.NoError(t, err)
	assert.NotContains(t, created.PasswordHash, "correct-password")

	user, err := svc.Authenticate(ctx, " nurse1 ", "correct-password")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, domain.RoleOperator, user.Role)

	_, err = svc.Authenticate(ctx, "nurse1", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "correct-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticate_InactiveUserRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, domain.CreateUserRequest{Username: "chief", Password: "pw", Role: domain.RoleAdmin})
	require.NoError(t, err)
	nurse, err := svc.CreateUser(ctx, domain.CreateUserRequest{Username: "nurse", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleViewer, nurse.Role)

	toggled, err := svc.ToggleActive(ctx, admin.ID, nurse.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	_, err = svc.Authenticate(ctx, "nurse", "pw")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestCreateUser_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Username: "taken", Password: "pw"})
	require.NoError(t, err)

	cases := []struct {
		name string
		req  domain.CreateUserRequest
		want error
	}{
		{"empty username", domain.CreateUserRequest{Username: " ", Password: "pw"}, domain.ErrInvalidUsername},
		{"bad characters", domain.CreateUserRequest{Username: "a b", Password: "pw"}, domain.ErrInvalidUsername},
		{"missing password", domain.CreateUserRequest{Username: "new"}, domain.ErrInvalidPassword},
		{"unknown role", domain.CreateUserRequest{Username: "new", Password: "pw", Role: "root"}, domain.ErrInvalidRole},
		{"duplicate", domain.CreateUserRequest{Username: "taken", Password: "pw"}, domain.ErrUserExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, domain.CreateUserRequest{Username: "nurse", Password: "old"})
	require.NoError(t, err)

	admin := domain.RoleAdmin
	updated, err := svc.UpdateUser(ctx, user.ID, domain.UpdateUserRequest{Role: &admin})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)

	_, err = svc.Authenticate(ctx, "nurse", "old")
	require.NoError(t, err, "empty password leaves the hash unchanged")

	_, err = svc.UpdateUser(ctx, user.ID, domain.UpdateUserRequest{Password: "new"})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "nurse", "old")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nurse", "new")
	assert.NoError(t, err)

	bogus := domain.Role("root")
	_, err = svc.UpdateUser(ctx, user.ID, domain.UpdateUserRequest{Role: &bogus})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = svc.UpdateUser(ctx, 42, domain.UpdateUserRequest{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestToggleActive_CannotDeactivateSelf(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, domain.CreateUserRequest{Username: "chief", Password: "pw", Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.ToggleActive(ctx, admin.ID, admin.ID)
	assert.ErrorIs(t, err, domain.ErrSelfDeactivation)
}

func TestInstall_OnlyWhileNoAdminExists(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Username: "viewer", Password: "pw"})
	require.NoError(t, err)

	admin, err := svc.Install(ctx, "chief", "pw")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	_, err = svc.Install(ctx, "second", "pw")
	assert.ErrorIs(t, err, domain.ErrAlreadyInstalled)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	admin, err := svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, "admin", admin.Username)

	again, err := svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.Nil(t, again)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAuthenticate_RehashesWeakerHash(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Username: "nurse", Password: "pw"})
	require.NoError(t, err)

	impl := svc.(*Service)
	stronger := testParams
	stronger.Time = 2
	impl.hasher = password.NewHasher(stronger)

	user, err := svc.Authenticate(ctx, "nurse", "pw")
	require.NoError(t, err)
	assert.Contains(t, user.PasswordHash, "t=2")

	stored, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.PasswordHash, "t=2")
}
