package service

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/atriumhq/atrium/internal/audit/domain"
	"github.com/atriumhq/atrium/internal/maintenance/domain"
	notifdomain "github.com/atriumhq/atrium/internal/notification/domain"
	roomdomain "github.com/atriumhq/atrium/internal/room/domain"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	RoomRepo roomdomain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
	NotifSvc notifdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	roomRepo roomdomain.Repository
	auditSvc auditdomain.Service
	notifSvc notifdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("maintenance.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		roomRepo: p.RoomRepo,
		auditSvc: p.AuditSvc,
		notifSvc: p.NotifSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequestRequest) (domain.MaintenanceRequest, error) {
	roomID, err := snowflake.ParseString(strings.TrimSpace(req.RoomID))
	if err != nil || roomID == 0 {
		return domain.MaintenanceRequest{}, domain.ErrInvalidRoom
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return domain.MaintenanceRequest{}, domain.ErrInvalidCategory
	}

	priority := domain.PriorityMedium
	if raw := strings.TrimSpace(req.Priority); raw != "" {
		priority = domain.Priority(strings.ToUpper(raw))
		if !priority.Valid() {
			return domain.MaintenanceRequest{}, domain.ErrInvalidPriority
		}
	}

	room, err := s.roomRepo.FindByID(ctx, s.db, roomID)
	if err != nil {
		return domain.MaintenanceRequest{}, err
	}
	if room == nil {
		return domain.MaintenanceRequest{}, domain.ErrInvalidRoom
	}

	now := time.Now().UTC()
	request := domain.MaintenanceRequest{
		ID:          s.genID.Generate(),
		RoomID:      roomID,
		Category:    category,
		Description: strings.TrimSpace(req.Description),
		Priority:    priority,
		Status:      domain.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if raw := strings.TrimSpace(req.TenantID); raw != "" {
		tenantID, err := snowflake.ParseString(raw)
		if err != nil || tenantID == 0 {
			return domain.MaintenanceRequest{}, domain.ErrInvalidID
		}
		request.TenantID = &tenantID
	}

	if err := s.repo.Insert(ctx, s.db, &request); err != nil {
		return domain.MaintenanceRequest{}, err
	}

	s.audit(ctx, "maintenance.created", request.ID, map[string]any{
		"room_id":  roomID.String(),
		"category": category,
		"priority": string(priority),
	})
	s.notifyStaff(ctx, &request, "New maintenance request",
		"Room "+room.Number+": "+category)
	return request, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequestRequest) (domain.MaintenanceRequest, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.MaintenanceRequest{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.MaintenanceRequest{}, err
	}
	if existing == nil {
		return domain.MaintenanceRequest{}, domain.ErrNotFound
	}

	now := time.Now().UTC()
	fields := map[string]any{"updated_at": now}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return domain.MaintenanceRequest{}, domain.ErrInvalidCategory
		}
		fields["category"] = category
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Priority != nil {
		priority := domain.Priority(strings.ToUpper(strings.TrimSpace(*req.Priority)))
		if !priority.Valid() {
			return domain.MaintenanceRequest{}, domain.ErrInvalidPriority
		}
		fields["priority"] = priority
	}
	if req.AssignedTo != nil {
		if raw := strings.TrimSpace(*req.AssignedTo); raw != "" {
			assignee, err := snowflake.ParseString(raw)
			if err != nil || assignee == 0 {
				return domain.MaintenanceRequest{}, domain.ErrInvalidID
			}
			fields["assigned_to"] = assignee
		} else {
			fields["assigned_to"] = nil
		}
	}
	if req.Status != nil {
		status := domain.RequestStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		if !status.Valid() {
			return domain.MaintenanceRequest{}, domain.ErrInvalidStatus
		}
		if status != existing.Status {
			if !existing.Status.CanTransitionTo(status) {
				return domain.MaintenanceRequest{}, domain.ErrInvalidTransition
			}
			fields["status"] = status
			if status == domain.StatusResolved {
				fields["resolved_at"] = now
			}
		}
	}

	if err := s.repo.UpdateFields(ctx, s.db, id, fields); err != nil {
		return domain.MaintenanceRequest{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.MaintenanceRequest{}, err
	}
	if updated == nil {
		return domain.MaintenanceRequest{}, domain.ErrNotFound
	}

	s.audit(ctx, "maintenance.updated", id, map[string]any{"status": string(updated.Status)})
	if updated.Status == domain.StatusResolved && updated.TenantID != nil {
		s.notifyTenant(ctx, updated, "Maintenance request resolved",
			"Your maintenance request has been resolved.")
	}
	return *updated, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequestRequest) (domain.ListRequestResponse, error) {
	filter := domain.ListRequestFilter{
		RoomID:   strings.TrimSpace(req.RoomID),
		TenantID: strings.TrimSpace(req.TenantID),
		Status:   strings.ToUpper(strings.TrimSpace(req.Status)),
		Priority: strings.ToUpper(strings.TrimSpace(req.Priority)),
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
		return domain.ListRequestResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(request *domain.MaintenanceRequest) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        request.ID.String(),
			CreatedAt: request.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	requests := make([]domain.MaintenanceRequest, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		requests = append(requests, *item)
	}

	resp := domain.ListRequestResponse{Requests: requests}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.MaintenanceRequest, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.MaintenanceRequest{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.MaintenanceRequest{}, err
	}
	if item == nil {
		return domain.MaintenanceRequest{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) notifyStaff(ctx context.Context, request *domain.MaintenanceRequest, title, body string) {
	if s.notifSvc == nil {
		return
	}
	err := s.notifSvc.Publish(ctx, notifdomain.PublishRequest{
		Roles: []string{"ADMIN", "SUPERADMIN", "SECURITY_OFFICER"},
		Title: title,
		Body:  body,
		Metadata: map[string]any{
			"maintenance_request_id": request.ID.String(),
			"priority":               string(request.Priority),
		},
	})
	if err != nil {
		s.log.Warn("maintenance notification failed", zap.Error(err))
	}
}

func (s *Service) notifyTenant(ctx context.Context, request *domain.MaintenanceRequest, title, body string) {
	if s.notifSvc == nil || request.TenantID == nil {
		return
	}
	err := s.notifSvc.Publish(ctx, notifdomain.PublishRequest{
		TenantID: request.TenantID,
		Title:    title,
		Body:     body,
		Metadata: map[string]any{
			"maintenance_request_id": request.ID.String(),
		},
	})
	if err != nil {
		s.log.Warn("maintenance notification failed", zap.Error(err))
	}
}

func (s *Service) audit(ctx context.Context, action string, id snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := id.String()
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, "maintenance_request", &targetID, metadata)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
