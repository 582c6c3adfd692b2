package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/atriumhq/atrium/internal/tenant/domain"
	"github.com/atriumhq/atrium/pkg/db/option"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tenants (id, name, email, phone, id_document_path, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tenant.ID,
		tenant.Name,
		tenant.Email,
		tenant.Phone,
		tenant.IDDocumentPath,
		tenant.Status,
		tenant.Metadata,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListTenantFilter, page pagination.Pagination) ([]*domain.Tenant, error) {
	var tenants []*domain.Tenant
	stmt := db.WithContext(ctx).Model(&domain.Tenant{})
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Email != "" {
		stmt = stmt.Where("email = ?", filter.Email)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Overdue != nil {
		stmt = stmt.Where("has_overdue_rent = ?", *filter.Overdue)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	tx := db.WithContext(ctx).Model(&domain.Tenant{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	tx := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Tenant{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) UpdateOverdueAggregate(ctx context.Context, db *gorm.DB, id snowflake.ID, agg domain.OverdueAggregate) error {
	return db.WithContext(ctx).Model(&domain.Tenant{}).Where("id = ?", id).Updates(map[string]any{
		"has_overdue_rent":      agg.HasOverdueRent,
		"total_overdue_amount":  agg.TotalOverdue,
		"overdue_count":         agg.OverdueCount,
		"last_overdue_date":     agg.LastOverdueDate,
		"updated_at":            time.Now().UTC(),
	}).Error
}
