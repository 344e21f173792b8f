package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	"github.com/noah-isme/intern-portal-api/pkg/response"
)

type inboxService interface {
	List(ctx context.Context, principal models.Session, page, limit int) ([]models.Notification, *models.Pagination, error)
	UnreadCount(ctx context.Context, principal models.Session) (int, error)
	MarkRead(ctx context.Context, principal models.Session, id string) error
	MarkAllRead(ctx context.Context, principal models.Session) (int64, error)
}

// NotificationHandler serves the caller's notification inbox.
type NotificationHandler struct {
	service inboxService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(svc inboxService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary List own notifications
// @Tags Notifications
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)
	rows, pagination, err := h.service.List(c.Request.Context(), session, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, "notifications", rows, pagination)
}

// Unread godoc
// @Summary Unread notification count
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) Unread(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	count, err := h.service.UnreadCount(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "unread notifications", dto.UnreadCountResponse{Unread: count})
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), session, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "notification marked read", nil)
}

// MarkAllRead godoc
// @Summary Mark every notification read
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	updated, err := h.service.MarkAllRead(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "notifications marked read", dto.MarkAllReadResponse{Updated: updated})
}
