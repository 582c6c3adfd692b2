package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/atriumhq/atrium/internal/audit/domain"
	"github.com/atriumhq/atrium/internal/room/domain"
	"github.com/atriumhq/atrium/pkg/db"
	"github.com/atriumhq/atrium/pkg/db/pagination"
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
		log:      p.Log.Named("room.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRoomRequest) (domain.Room, error) {
	number := strings.TrimSpace(req.Number)
	if number == "" {
		return domain.Room{}, domain.ErrInvalidNumber
	}
	if req.MonthlyRate <= 0 {
		return domain.Room{}, domain.ErrInvalidRate
	}

	now := time.Now().UTC()
	room := domain.Room{
		ID:          s.genID.Generate(),
		Number:      number,
		Floor:       req.Floor,
		AreaSqm:     req.AreaSqm,
		MonthlyRate: req.MonthlyRate,
		Status:      domain.RoomStatusVacant,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &room); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Room{}, domain.ErrDuplicateRoom
		}
		return domain.Room{}, err
	}

	s.audit(ctx, "room.created", room.ID, map[string]any{"number": room.Number})
	return room, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRoomRequest) (domain.Room, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Room{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Room{}, err
	}
	if existing == nil {
		return domain.Room{}, domain.ErrNotFound
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if req.Floor != nil {
		fields["floor"] = *req.Floor
	}
	if req.AreaSqm != nil {
		fields["area_sqm"] = *req.AreaSqm
	}
	if req.MonthlyRate != nil {
		if *req.MonthlyRate <= 0 {
			return domain.Room{}, domain.ErrInvalidRate
		}
		fields["monthly_rate"] = *req.MonthlyRate
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		status := domain.RoomStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		switch status {
		case domain.RoomStatusVacant, domain.RoomStatusMaintenance:
			// Occupied rooms are only claimed through rentals.
			if existing.Status == domain.RoomStatusOccupied {
				return domain.Room{}, domain.ErrRoomOccupied
			}
			fields["status"] = status
		default:
			return domain.Room{}, domain.ErrInvalidStatus
		}
	}

	if err := s.repo.UpdateFields(ctx, s.db, id, fields); err != nil {
		return domain.Room{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Room{}, err
	}
	if updated == nil {
		return domain.Room{}, domain.ErrNotFound
	}

	s.audit(ctx, "room.updated", id, nil)
	return *updated, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRoomRequest) (domain.ListRoomResponse, error) {
	filter := domain.ListRoomFilter{
		Status: strings.ToUpper(strings.TrimSpace(req.Status)),
		Floor:  req.Floor,
		Number: strings.TrimSpace(req.Number),
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
		return domain.ListRoomResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(room *domain.Room) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        room.ID.String(),
			CreatedAt: room.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	rooms := make([]domain.Room, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		rooms = append(rooms, *item)
	}

	resp := domain.ListRoomResponse{Rooms: rooms}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Room, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Room{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Room{}, err
	}
	if item == nil {
		return domain.Room{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	if existing.Status == domain.RoomStatusOccupied {
		return domain.ErrRoomOccupied
	}

	var rentals int64
	if err := s.db.WithContext(ctx).
		Table("rentals").
		Where("room_id = ?", id).
		Count(&rentals).Error; err != nil {
		return err
	}
	if rentals > 0 {
		return domain.ErrRoomHasRentals
	}

	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return err
	}

	s.audit(ctx, "room.deleted", id, nil)
	return nil
}

func (s *Service) audit(ctx context.Context, action string, id snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := id.String()
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, "room", &targetID, metadata)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
