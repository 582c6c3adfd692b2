package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/atriumhq/atrium/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectTenant       = "tenant"
	ObjectRoom         = "room"
	ObjectRental       = "rental"
	ObjectInvoice      = "invoice"
	ObjectUtility      = "utility"
	ObjectPayment      = "payment"
	ObjectBankAccount  = "bank_account"
	ObjectMaintenance  = "maintenance"
	ObjectNotification = "notification"
	ObjectAuditLog     = "audit_log"
	ObjectUser         = "user"
	ObjectJob          = "job"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionRentalTerminate = "rental.terminate"
	ActionPaymentConfirm  = "payment.confirm"
	ActionPaymentReject   = "payment.reject"
	ActionJobTrigger      = "job.trigger"
	ActionUserManage      = "user.manage"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
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
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

// Authorize checks actor against the policy. Actors are either "system"
// or "user:<id>"; user roles are loaded from the users table and mirrored
// into casbin grouping policies.
func (s *ServiceImpl) Authorize(ctx context.Context, actor string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, actorType, actorID, err := s.resolveActor(ctx, actor)
	if err != nil {
		s.auditDenied(ctx, actorType, actorID, object, action)
		return err
	}

	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, actorType, actorID, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string) (string, string, string, *string, error) {
	if actor == "system" {
		return actor, "role:system", "system", nil, nil
	}
	if strings.HasPrefix(actor, "user:") {
		userIDRaw := strings.TrimPrefix(actor, "user:")
		userID, err := snowflake.ParseString(userIDRaw)
		if err != nil || userID == 0 {
			return "", "", "", nil, ErrInvalidActor
		}
		userIDStr := userID.String()
		role, err := s.roleForUser(ctx, userID)
		if err != nil {
			return actor, "", "user", &userIDStr, err
		}
		roleName := fmt.Sprintf("role:%s", strings.ToLower(role))
		return actor, roleName, "user", &userIDStr, nil
	}
	return "", "", "", nil, ErrInvalidActor
}

func (s *ServiceImpl) roleForUser(ctx context.Context, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role FROM users WHERE id = ? LIMIT 1`,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actorType string, actorID *string, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	targetID := "capability"
	_ = s.auditSvc.AuditLog(ctx, actorType, actorID, "authorization.denied", "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	adminObjects := []string{
		ObjectTenant, ObjectRoom, ObjectRental, ObjectInvoice, ObjectUtility,
		ObjectPayment, ObjectBankAccount, ObjectMaintenance, ObjectNotification,
	}

	policies := [][]string{
		// Tenants see their own data; row-level scoping happens in handlers.
		{"role:tenant", ObjectInvoice, ActionView},
		{"role:tenant", ObjectUtility, ActionView},
		{"role:tenant", ObjectPayment, ActionView},
		{"role:tenant", ObjectPayment, ActionCreate},
		{"role:tenant", ObjectRental, ActionView},
		{"role:tenant", ObjectMaintenance, ActionView},
		{"role:tenant", ObjectMaintenance, ActionCreate},
		{"role:tenant", ObjectNotification, ActionView},
		{"role:tenant", ObjectNotification, ActionUpdate},

		// Security officers handle maintenance and can look up rooms.
		{"role:security_officer", ObjectRoom, ActionView},
		{"role:security_officer", ObjectMaintenance, ActionView},
		{"role:security_officer", ObjectMaintenance, ActionUpdate},
		{"role:security_officer", ObjectNotification, ActionView},
		{"role:security_officer", ObjectNotification, ActionUpdate},

		// Admins run day-to-day operations.
		{"role:admin", ObjectRental, ActionRentalTerminate},
		{"role:admin", ObjectPayment, ActionPaymentConfirm},
		{"role:admin", ObjectPayment, ActionPaymentReject},
		{"role:admin", ObjectAuditLog, ActionView},
		{"role:admin", ObjectJob, ActionJobTrigger},

		// Superadmins additionally manage accounts and destructive ops.
		{"role:superadmin", ObjectUser, ActionUserManage},
		{"role:superadmin", ObjectTenant, ActionDelete},
		{"role:superadmin", ObjectRoom, ActionDelete},
		{"role:superadmin", ObjectBankAccount, ActionDelete},

		// Scheduler jobs run with full access.
		{"role:system", ObjectInvoice, "*"},
		{"role:system", ObjectUtility, "*"},
		{"role:system", ObjectRental, "*"},
		{"role:system", ObjectTenant, "*"},
		{"role:system", ObjectNotification, "*"},
	}

	for _, object := range adminObjects {
		for _, action := range []string{ActionView, ActionCreate, ActionUpdate} {
			policies = append(policies, []string{"role:admin", object, action})
		}
	}

	groupings := [][]string{
		{"role:superadmin", "role:admin"},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	for _, grouping := range groupings {
		if _, err := enforcer.AddGroupingPolicy(grouping); err != nil {
			return err
		}
	}
	return nil
}
