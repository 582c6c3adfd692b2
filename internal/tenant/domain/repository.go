package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	List(ctx context.Context, db *gorm.DB, filter ListTenantFilter, page pagination.Pagination) ([]*Tenant, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	UpdateOverdueAggregate(ctx context.Context, db *gorm.DB, id snowflake.ID, agg OverdueAggregate) error
}
