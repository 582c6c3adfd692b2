package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Channel string

const (
	ChannelInApp Channel = "IN_APP"
	ChannelEmail Channel = "EMAIL"
)

type Status string

const (
	StatusUnread Status = "UNREAD"
	StatusRead   Status = "READ"
)

// Notification is one delivered message for one user. Email copies are
// recorded as separate rows with ChannelEmail.
type Notification struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID      `gorm:"column:user_id;not null;index" json:"user_id"`
	TenantID  *snowflake.ID     `gorm:"column:tenant_id;index" json:"tenant_id,omitempty"`
	Channel   Channel           `gorm:"type:text;not null;default:'IN_APP'" json:"channel"`
	Title     string            `gorm:"type:text;not null" json:"title"`
	Body      string            `gorm:"type:text" json:"body,omitempty"`
	Status    Status            `gorm:"type:text;not null;default:'UNREAD';index" json:"status"`
	ReadAt    *time.Time        `gorm:"column:read_at" json:"read_at,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Notification) TableName() string { return "notifications" }

// Recipient is a resolved delivery target for a publish request.
type Recipient struct {
	UserID   snowflake.ID
	TenantID *snowflake.ID
	Email    string
}
