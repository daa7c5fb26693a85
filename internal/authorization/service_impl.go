package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	authdomain "github.com/smallbiznis/wardboard/internal/auth/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectBoard     = "board"
	ObjectSummary   = "summary"
	ObjectState     = "state"
	ObjectFacility  = "facility"
	ObjectStatus    = "status"
	ObjectUser      = "user"
	ObjectAuditLog  = "audit_log"
	ObjectAutoReset = "auto_reset"
)

const (
	ActionView   = "view"
	ActionApply  = "apply"
	ActionManage = "manage"
	ActionExport = "export"
	ActionPurge  = "purge"
	ActionRun    = "run"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, role authdomain.Role, object, action string) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(subject(role), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("role", string(role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func subject(role authdomain.Role) string {
	return "role:" + string(role)
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	viewer := subject(authdomain.RoleViewer)
	operator := subject(authdomain.RoleOperator)
	admin := subject(authdomain.RoleAdmin)

	policies := [][]string{
		{viewer, ObjectBoard, ActionView},
		{viewer, ObjectSummary, ActionView},
		{viewer, ObjectSummary, ActionExport},

		{operator, ObjectState, ActionApply},

		{admin, ObjectFacility, ActionManage},
		{admin, ObjectStatus, ActionManage},
		{admin, ObjectUser, ActionManage},
		{admin, ObjectAuditLog, ActionView},
		{admin, ObjectAuditLog, ActionExport},
		{admin, ObjectAuditLog, ActionPurge},
		{admin, ObjectAutoReset, ActionRun},
	}
	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	// admin inherits operator, which inherits viewer.
	groupings := [][]string{
		{operator, viewer},
		{admin, operator},
	}
	for _, grouping := range groupings {
		if _, err := enforcer.AddGroupingPolicy(grouping); err != nil {
			return err
		}
	}
	return nil
}
