package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/atriumhq/atrium/internal/rental/domain"
	"github.com/atriumhq/atrium/pkg/db/option"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rental *domain.Rental) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO rentals (
			id, tenant_id, room_id, rent_amount, payment_interval, include_tax,
			tax_percent, include_water, include_electricity, include_generator,
			include_service, self_managed_electricity, start_date, end_date,
			status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rental.ID,
		rental.TenantID,
		rental.RoomID,
		rental.RentAmount,
		rental.PaymentInterval,
		rental.IncludeTax,
		rental.TaxPercent,
		rental.IncludeWater,
		rental.IncludeElectricity,
		rental.IncludeGenerator,
		rental.IncludeService,
		rental.SelfManagedElectricity,
		rental.StartDate,
		rental.EndDate,
		rental.Status,
		rental.CreatedAt,
		rental.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Rental, error) {
	var rental domain.Rental
	err := db.WithContext(ctx).Where("id = ?", id).First(&rental).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRentalFilter, page pagination.Pagination) ([]*domain.Rental, error) {
	var rentals []*domain.Rental
	stmt := db.WithContext(ctx).Model(&domain.Rental{})
	if filter.TenantID != "" {
		stmt = stmt.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.RoomID != "" {
		stmt = stmt.Where("room_id = ?", filter.RoomID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.EndingBefore != nil {
		stmt = stmt.Where("end_date < ?", *filter.EndingBefore)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&rentals).Error
	if err != nil {
		return nil, err
	}
	return rentals, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	tx := db.WithContext(ctx).Model(&domain.Rental{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var utilityColumns = map[string]bool{
	"include_water":       true,
	"include_electricity": true,
	"include_generator":   true,
	"include_service":     true,
}

func (r *repo) ActiveWithUtility(ctx context.Context, db *gorm.DB, includeColumn string) ([]*domain.Rental, error) {
	if !utilityColumns[includeColumn] {
		return nil, fmt.Errorf("unknown utility column %q", includeColumn)
	}
	var rentals []*domain.Rental
	err := db.WithContext(ctx).
		Model(&domain.Rental{}).
		Where("status = ?", domain.RentalStatusActive).
		Where(includeColumn+" = ?", true).
		Order("id asc").
		Find(&rentals).Error
	if err != nil {
		return nil, err
	}
	return rentals, nil
}

func (r *repo) EndingBetween(ctx context.Context, db *gorm.DB, from, to time.Time) ([]*domain.Rental, error) {
	var rentals []*domain.Rental
	err := db.WithContext(ctx).
		Model(&domain.Rental{}).
		Where("status = ?", domain.RentalStatusActive).
		Where("end_date >= ? AND end_date < ?", from, to).
		Order("end_date asc").
		Find(&rentals).Error
	if err != nil {
		return nil, err
	}
	return rentals, nil
}
