package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, room *Room) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Room, error)
	List(ctx context.Context, db *gorm.DB, filter ListRoomFilter, page pagination.Pagination) ([]*Room, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// Claim flips a VACANT room to OCCUPIED in a single conditional update.
	// Returns ErrRoomNotVacant when the room was already taken.
	Claim(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	// Release flips an OCCUPIED room back to VACANT.
	Release(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
