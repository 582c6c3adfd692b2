package service

import (
	"context"
	"strings"
	"time"

	"github.com/atriumhq/atrium/internal/notification/domain"
	"github.com/atriumhq/atrium/internal/notification/hub"
	"github.com/atriumhq/atrium/internal/providers/email"
	"github.com/atriumhq/atrium/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Hub      *hub.Hub
	EmailPrv email.Provider `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	hub      *hub.Hub
	emailPrv email.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("notification.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		hub:      p.Hub,
		emailPrv: p.EmailPrv,
	}
}

func (s *Service) Publish(ctx context.Context, req domain.PublishRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.ErrInvalidTitle
	}
	if req.UserID == nil && req.TenantID == nil && len(req.Roles) == 0 {
		return domain.ErrInvalidTarget
	}

	recipients, err := s.resolveRecipients(ctx, req)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		// Tenants without a portal login are a normal case.
		s.log.Debug("notification published with no recipients", zap.String("title", title))
		return nil
	}

	now := time.Now().UTC()
	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	for _, recipient := range recipients {
		notification := domain.Notification{
			ID:        s.genID.Generate(),
			UserID:    recipient.UserID,
			TenantID:  recipient.TenantID,
			Channel:   domain.ChannelInApp,
			Title:     title,
			Body:      req.Body,
			Status:    domain.StatusUnread,
			Metadata:  metadata,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Insert(ctx, s.db, &notification); err != nil {
			return err
		}

		s.hub.Publish(recipient.UserID.String(), hub.Event{
			ID:        notification.ID.String(),
			Title:     notification.Title,
			Body:      notification.Body,
			Status:    string(notification.Status),
			CreatedAt: notification.CreatedAt.Format(time.RFC3339),
		})

		if req.Email && s.emailPrv != nil && recipient.Email != "" {
			s.sendEmail(ctx, recipient, title, req.Body)
		}
	}
	return nil
}

func (s *Service) sendEmail(ctx context.Context, recipient domain.Recipient, title, body string) {
	err := s.emailPrv.SendTemplate(ctx, []string{recipient.Email}, "generic", map[string]interface{}{
		"subject": title,
		"title":   title,
		"body":    body,
	})
	if err != nil {
		s.log.Warn("notification email failed",
			zap.String("user_id", recipient.UserID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) resolveRecipients(ctx context.Context, req domain.PublishRequest) ([]domain.Recipient, error) {
	seen := map[snowflake.ID]bool{}
	var recipients []domain.Recipient

	appendAll := func(found []domain.Recipient) {
		for _, recipient := range found {
			if seen[recipient.UserID] {
				continue
			}
			seen[recipient.UserID] = true
			recipients = append(recipients, recipient)
		}
	}

	if req.UserID != nil {
		found, err := s.repo.RecipientsByUser(ctx, s.db, *req.UserID)
		if err != nil {
			return nil, err
		}
		appendAll(found)
	}
	if req.TenantID != nil {
		found, err := s.repo.RecipientsByTenant(ctx, s.db, *req.TenantID)
		if err != nil {
			return nil, err
		}
		appendAll(found)
	}
	if len(req.Roles) > 0 {
		found, err := s.repo.RecipientsByRoles(ctx, s.db, req.Roles)
		if err != nil {
			return nil, err
		}
		appendAll(found)
	}
	return recipients, nil
}

func (s *Service) List(ctx context.Context, req domain.ListNotificationRequest) (domain.ListNotificationResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	filter := domain.ListNotificationFilter{
		UserID: userID,
		Status: strings.ToUpper(strings.TrimSpace(req.Status)),
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListNotificationResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(notification *domain.Notification) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        notification.ID.String(),
			CreatedAt: notification.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	notifications := make([]domain.Notification, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		notifications = append(notifications, *item)
	}

	resp := domain.ListNotificationResponse{Notifications: notifications}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	if userID != "" {
		if id, err := snowflake.ParseString(userID); err == nil {
			count, err := s.repo.CountUnread(ctx, s.db, id)
			if err != nil {
				return domain.ListNotificationResponse{}, err
			}
			resp.UnreadCount = count
		}
	}
	return resp, nil
}

func (s *Service) MarkRead(ctx context.Context, userID snowflake.ID, rawID string) error {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return domain.ErrInvalidID
	}

	notification, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if notification == nil || notification.UserID != userID {
		return domain.ErrNotFound
	}
	if notification.Status == domain.StatusRead {
		return nil
	}

	now := time.Now().UTC()
	return s.repo.UpdateFields(ctx, s.db, id, map[string]any{
		"status":     domain.StatusRead,
		"read_at":    now,
		"updated_at": now,
	})
}

func (s *Service) MarkAllRead(ctx context.Context, userID snowflake.ID) error {
	return s.repo.MarkAllRead(ctx, s.db, userID)
}
