package domain

import (
	"context"

	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListNotificationFilter struct {
	UserID string
	Status string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *Notification) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Notification, error)
	List(ctx context.Context, db *gorm.DB, filter ListNotificationFilter, page pagination.Pagination) ([]*Notification, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID) error
	CountUnread(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)

	// RecipientsByUser, RecipientsByTenant and RecipientsByRoles resolve
	// publish targets against the users table.
	RecipientsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Recipient, error)
	RecipientsByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]Recipient, error)
	RecipientsByRoles(ctx context.Context, db *gorm.DB, roles []string) ([]Recipient, error)
}
