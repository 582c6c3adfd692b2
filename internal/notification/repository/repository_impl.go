package repository

import (
	"context"
	"time"

	"github.com/atriumhq/atrium/internal/notification/domain"
	"github.com/atriumhq/atrium/pkg/db/option"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, notification *domain.Notification) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO notifications (id, user_id, tenant_id, channel, title, body, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		notification.ID,
		notification.UserID,
		notification.TenantID,
		notification.Channel,
		notification.Title,
		notification.Body,
		notification.Status,
		notification.Metadata,
		notification.CreatedAt,
		notification.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Notification, error) {
	var notification domain.Notification
	err := db.WithContext(ctx).Where("id = ?", id).First(&notification).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListNotificationFilter, page pagination.Pagination) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	stmt := db.WithContext(ctx).Model(&domain.Notification{})
	if filter.UserID != "" {
		stmt = stmt.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	tx := db.WithContext(ctx).Model(&domain.Notification{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND status = ?", userID, domain.StatusUnread).
		Updates(map[string]any{
			"status":     domain.StatusRead,
			"read_at":    now,
			"updated_at": now,
		}).Error
}

func (r *repo) CountUnread(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND status = ?", userID, domain.StatusUnread).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

type recipientRow struct {
	ID       snowflake.ID
	TenantID *snowflake.ID
	Email    string
}

func (r *repo) RecipientsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.Recipient, error) {
	var rows []recipientRow
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, email FROM users WHERE id = ?`,
		userID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toRecipients(rows), nil
}

func (r *repo) RecipientsByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.Recipient, error) {
	var rows []recipientRow
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, email FROM users WHERE tenant_id = ?`,
		tenantID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toRecipients(rows), nil
}

func (r *repo) RecipientsByRoles(ctx context.Context, db *gorm.DB, roles []string) ([]domain.Recipient, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	var rows []recipientRow
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, email FROM users WHERE role IN ?`,
		roles,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toRecipients(rows), nil
}

func toRecipients(rows []recipientRow) []domain.Recipient {
	recipients := make([]domain.Recipient, 0, len(rows))
	for _, row := range rows {
		recipients = append(recipients, domain.Recipient{
			UserID:   row.ID,
			TenantID: row.TenantID,
			Email:    row.Email,
		})
	}
	return recipients
}
