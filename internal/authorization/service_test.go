package authorization

import (
	"context"
	"testing"

	authdomain "github.com/smallbiznis/wardboard/internal/auth/domain"
	"github.com/smallbiznis/wardboard/internal/domainerr"
	"github.com/smallbiznis/wardboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	db := testutil.OpenDB(t)
	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)
	return NewService(Params{Log: zaptest.NewLogger(t), Enforcer: enforcer})
}

func TestAuthorize_RoleHierarchy(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		role    authdomain.Role
		object  string
		action  string
		allowed bool
	}{
		{authdomain.RoleViewer, ObjectBoard, ActionView, true},
		{authdomain.RoleViewer, ObjectSummary, ActionView, true},
		{authdomain.RoleViewer, ObjectState, ActionApply, false},
		{authdomain.RoleViewer, ObjectAuditLog, ActionView, false},
		{authdomain.RoleOperator, ObjectBoard, ActionView, true},
		{authdomain.RoleOperator, ObjectState, ActionApply, true},
		{authdomain.RoleOperator, ObjectFacility, ActionManage, false},
		{authdomain.RoleOperator, ObjectAutoReset, ActionRun, false},
		{authdomain.RoleAdmin, ObjectBoard, ActionView, true},
		{authdomain.RoleAdmin, ObjectState, ActionApply, true},
		{authdomain.RoleAdmin, ObjectUser, ActionManage, true},
		{authdomain.RoleAdmin, ObjectAuditLog, ActionPurge, true},
		{authdomain.RoleAdmin, ObjectAutoReset, ActionRun, true},
	}
	for _, tc := range cases {
		err := svc.Authorize(ctx, tc.role, tc.object, tc.action)
		if tc.allowed {
			assert.NoError(t, err, "%s %s %s", tc.role, tc.object, tc.action)
		} else {
			assert.ErrorIs(t, err, ErrForbidden, "%s %s %s", tc.role, tc.object, tc.action)
			assert.ErrorIs(t, err, domainerr.ErrForbidden)
		}
	}
}

func TestAuthorize_InvalidInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, "root", ObjectBoard, ActionView), ErrInvalidRole)
	assert.ErrorIs(t, svc.Authorize(ctx, authdomain.RoleAdmin, " ", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, authdomain.RoleAdmin, ObjectBoard, ""), ErrInvalidAction)
}

func TestNewEnforcer_SeedIsIdempotent(t *testing.T) {
	db := testutil.OpenDB(t)
	_, err := NewEnforcer(db)
	require.NoError(t, err)
	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	var rules int64
	require.NoError(t, db.Table("casbin_rule").Count(&rules).Error)
	assert.EqualValues(t, 13, rules)

	ok, err := enforcer.Enforce("role:admin", ObjectBoard, ActionView)
	require.NoError(t, err)
	assert.True(t, ok)
}
