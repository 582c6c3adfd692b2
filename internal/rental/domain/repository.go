package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rental *Rental) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Rental, error)
	List(ctx context.Context, db *gorm.DB, filter ListRentalFilter, page pagination.Pagination) ([]*Rental, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error

	// ActiveWithUtility returns active rentals opted into the given
	// include_<type> column.
	ActiveWithUtility(ctx context.Context, db *gorm.DB, includeColumn string) ([]*Rental, error)
	// EndingBetween returns active rentals whose end date falls in [from, to).
	EndingBetween(ctx context.Context, db *gorm.DB, from, to time.Time) ([]*Rental, error)
}
