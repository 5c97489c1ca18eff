package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

type notificationService interface {
	Log(ctx context.Context) []models.NotificationLogEntry
	Clear(ctx context.Context) error
	Scan(ctx context.Context) (int, error)
}

// NotificationHandler exposes the reminder log.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(svc notificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary Notification log, newest first
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	entries := h.service.Log(c.Request.Context())
	response.OK(c, entries, map[string]interface{}{"count": len(entries)})
}

// Clear godoc
// @Summary Empty the notification log
// @Tags Notifications
// @Success 204
// @Router /notifications [delete]
func (h *NotificationHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Scan godoc
// @Summary Run the due-today reminder scan now
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/scan [post]
func (h *NotificationHandler) Scan(c *gin.Context) {
	added, err := h.service.Scan(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"added": added})
}
