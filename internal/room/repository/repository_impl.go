package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/atriumhq/atrium/internal/room/domain"
	"github.com/atriumhq/atrium/pkg/db/option"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, room *domain.Room) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO rooms (id, number, floor, area_sqm, monthly_rate, status, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.ID,
		room.Number,
		room.Floor,
		room.AreaSqm,
		room.MonthlyRate,
		room.Status,
		room.Description,
		room.CreatedAt,
		room.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Room, error) {
	var room domain.Room
	err := db.WithContext(ctx).Where("id = ?", id).First(&room).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRoomFilter, page pagination.Pagination) ([]*domain.Room, error) {
	var rooms []*domain.Room
	stmt := db.WithContext(ctx).Model(&domain.Room{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Floor != nil {
		stmt = stmt.Where("floor = ?", *filter.Floor)
	}
	if filter.Number != "" {
		stmt = stmt.Where("number = ?", filter.Number)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	tx := db.WithContext(ctx).Model(&domain.Room{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	tx := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Room{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) Claim(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	tx := db.WithContext(ctx).Exec(
		`UPDATE rooms SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		domain.RoomStatusOccupied,
		time.Now().UTC(),
		id,
		domain.RoomStatusVacant,
	)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrRoomNotVacant
	}
	return nil
}

func (r *repo) Release(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	tx := db.WithContext(ctx).Exec(
		`UPDATE rooms SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		domain.RoomStatusVacant,
		time.Now().UTC(),
		id,
		domain.RoomStatusOccupied,
	)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
