package domain

import (
	"context"
	"errors"

	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
)

// PublishRequest targets users directly, every user of a tenant, or every
// user holding one of the named roles. At least one target must be set.
type PublishRequest struct {
	UserID   *snowflake.ID
	TenantID *snowflake.ID
	Roles    []string
	Title    string
	Body     string
	// Email additionally sends the message over SMTP when configured.
	Email    bool
	Metadata map[string]any
}

type ListNotificationRequest struct {
	PageToken string
	PageSize  int32
	UserID    string
	Status    string
}

type ListNotificationResponse struct {
	pagination.PageInfo
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unread_count"`
}

type Service interface {
	// Publish persists one notification per resolved recipient and
	// pushes it to any live streams. Delivery failures are logged, not
	// returned; only resolution and storage errors surface.
	Publish(context.Context, PublishRequest) error
	List(context.Context, ListNotificationRequest) (ListNotificationResponse, error)
	MarkRead(ctx context.Context, userID snowflake.ID, rawID string) error
	MarkAllRead(ctx context.Context, userID snowflake.ID) error
}

var (
	ErrInvalidTitle  = errors.New("invalid_title")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNoRecipients  = errors.New("no_recipients")
	ErrNotFound      = errors.New("not_found")
	ErrInvalidTarget = errors.New("invalid_target")
)
