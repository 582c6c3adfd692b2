package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/atriumhq/atrium/internal/audit/domain"
	"github.com/atriumhq/atrium/internal/tenant/domain"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("tenant.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTenantRequest) (domain.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Tenant{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Tenant{}, domain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	tenant := domain.Tenant{
		ID:             s.genID.Generate(),
		Name:           name,
		Email:          email,
		Phone:          strings.TrimSpace(req.Phone),
		IDDocumentPath: strings.TrimSpace(req.IDDocumentPath),
		Status:         domain.TenantStatusActive,
		Metadata:       datatypes.JSONMap{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &tenant); err != nil {
		return domain.Tenant{}, err
	}

	s.audit(ctx, "tenant.created", tenant.ID, map[string]any{"name": tenant.Name})
	return tenant, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTenantRequest) (domain.Tenant, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Tenant{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if existing == nil {
		return domain.Tenant{}, domain.ErrNotFound
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Tenant{}, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" || !strings.Contains(email, "@") {
			return domain.Tenant{}, domain.ErrInvalidEmail
		}
		fields["email"] = email
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.IDDocumentPath != nil {
		fields["id_document_path"] = strings.TrimSpace(*req.IDDocumentPath)
	}
	if req.Status != nil {
		status := domain.TenantStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		if status != domain.TenantStatusActive && status != domain.TenantStatusInactive {
			return domain.Tenant{}, domain.ErrInvalidStatus
		}
		fields["status"] = status
	}

	if err := s.repo.UpdateFields(ctx, s.db, id, fields); err != nil {
		return domain.Tenant{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if updated == nil {
		return domain.Tenant{}, domain.ErrNotFound
	}

	s.audit(ctx, "tenant.updated", id, nil)
	return *updated, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTenantRequest) (domain.ListTenantResponse, error) {
	filter := domain.ListTenantFilter{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Status:      strings.ToUpper(strings.TrimSpace(req.Status)),
		Overdue:     req.Overdue,
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListTenantResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(tenant *domain.Tenant) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        tenant.ID.String(),
			CreatedAt: tenant.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	tenants := make([]domain.Tenant, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		tenants = append(tenants, *item)
	}

	resp := domain.ListTenantResponse{Tenants: tenants}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetTenantRequest) (domain.Tenant, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Tenant{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if item == nil {
		return domain.Tenant{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}

	var active int64
	if err := s.db.WithContext(ctx).
		Table("rentals").
		Where("tenant_id = ? AND status = ?", id, "ACTIVE").
		Count(&active).Error; err != nil {
		return err
	}
	if active > 0 {
		return domain.ErrTenantHasActiveRent
	}

	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return err
	}

	s.audit(ctx, "tenant.deleted", id, nil)
	return nil
}

func (s *Service) audit(ctx context.Context, action string, id snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := id.String()
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, "tenant", &targetID, metadata)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
