package repository

import (
	"context"

	"github.com/atriumhq/atrium/internal/maintenance/domain"
	"github.com/atriumhq/atrium/pkg/db/option"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, request *domain.MaintenanceRequest) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO maintenance_requests (id, room_id, tenant_id, category, description, priority, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		request.ID,
		request.RoomID,
		request.TenantID,
		request.Category,
		request.Description,
		request.Priority,
		request.Status,
		request.CreatedAt,
		request.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MaintenanceRequest, error) {
	var request domain.MaintenanceRequest
	err := db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequestFilter, page pagination.Pagination) ([]*domain.MaintenanceRequest, error) {
	var requests []*domain.MaintenanceRequest
	stmt := db.WithContext(ctx).Model(&domain.MaintenanceRequest{})
	if filter.RoomID != "" {
		stmt = stmt.Where("room_id = ?", filter.RoomID)
	}
	if filter.TenantID != "" {
		stmt = stmt.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		stmt = stmt.Where("priority = ?", filter.Priority)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	tx := db.WithContext(ctx).Model(&domain.MaintenanceRequest{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
