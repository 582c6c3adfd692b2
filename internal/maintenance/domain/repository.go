package domain

import (
	"context"

	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListRequestFilter struct {
	RoomID   string
	TenantID string
	Status   string
	Priority string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, request *MaintenanceRequest) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MaintenanceRequest, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequestFilter, page pagination.Pagination) ([]*MaintenanceRequest, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
}
