package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	notifdomain "github.com/atriumhq/atrium/internal/notification/domain"
)

type listNotificationsQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size"`
	Status    string `form:"status"`
}

func (s *Server) ListNotifications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var query listNotificationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.notifSvc.List(c.Request.Context(), notifdomain.ListNotificationRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
		UserID:    user.ID.String(),
		Status:    strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":         resp.Notifications,
		"unread_count": resp.UnreadCount,
		"page_info":    resp.PageInfo,
	})
}

func (s *Server) MarkNotificationRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.notifSvc.MarkRead(c.Request.Context(), user.ID, strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) MarkAllNotificationsRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.notifSvc.MarkAllRead(c.Request.Context(), user.ID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamNotifications pushes the caller's notifications over SSE. The
// replay buffer is flushed first so reconnecting clients catch up.
func (s *Server) StreamNotifications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if s.notifHub == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	sub, replay, err := s.notifHub.Subscribe(user.ID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	for _, event := range replay {
		c.SSEvent("notification", event)
	}
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-sub.Events():
			if !open {
				return false
			}
			c.SSEvent("notification", event)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
