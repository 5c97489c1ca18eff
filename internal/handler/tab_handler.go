package handler

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/tab"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

const defaultHeartbeat = 25 * time.Second

type tabHub interface {
	Open(ctx context.Context) (*tab.Tab, error)
	Get(id string) (*tab.Tab, error)
	Close(id string) error
}

// PermissionRequest records the notification permission of a tab.
type PermissionRequest struct {
	Granted bool `json:"granted"`
}

// TabHandler opens tabs and streams their view frames.
type TabHandler struct {
	hub       tabHub
	heartbeat time.Duration
}

// NewTabHandler constructs the handler. A zero heartbeat uses 25s.
func NewTabHandler(hub tabHub, heartbeat time.Duration) *TabHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &TabHandler{hub: hub, heartbeat: heartbeat}
}

// Open godoc
// @Summary Register a client tab
// @Tags Tabs
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /tabs [post]
func (h *TabHandler) Open(c *gin.Context) {
	t, err := h.hub.Open(c.Request.Context())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to watch store"))
		return
	}
	response.Created(c, gin.H{"id": t.ID, "openedAt": t.OpenedAt})
}

// Close godoc
// @Summary Close a client tab
// @Tags Tabs
// @Param id path string true "Tab ID"
// @Success 204
// @Router /tabs/{id} [delete]
func (h *TabHandler) Close(c *gin.Context) {
	if err := h.hub.Close(c.Param("id")); err != nil {
		response.Error(c, tabError(err))
		return
	}
	response.NoContent(c)
}

// Permission godoc
// @Summary Grant or deny platform notifications for a tab
// @Tags Tabs
// @Accept json
// @Param id path string true "Tab ID"
// @Param payload body PermissionRequest true "Permission"
// @Success 200 {object} response.Envelope
// @Router /tabs/{id}/permission [post]
func (h *TabHandler) Permission(c *gin.Context) {
	t, err := h.hub.Get(c.Param("id"))
	if err != nil {
		response.Error(c, tabError(err))
		return
	}
	var req PermissionRequest
	if !bindJSON(c, &req, "permission") {
		return
	}
	t.SetPermission(req.Granted)
	response.OK(c, gin.H{"id": t.ID, "granted": t.Granted()})
}

// Stream godoc
// @Summary Server-sent view frames for a tab
// @Tags Tabs
// @Produce text/event-stream
// @Param id path string true "Tab ID"
// @Success 200
// @Router /tabs/{id}/stream [get]
func (h *TabHandler) Stream(c *gin.Context) {
	t, err := h.hub.Get(c.Param("id"))
	if err != nil {
		response.Error(c, tabError(err))
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	disconnect := t.Connect()
	defer disconnect()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()
	done := c.Request.Context().Done()

	c.Stream(func(io.Writer) bool {
		if f, ok := t.TryNext(); ok {
			c.SSEvent(f.View, f)
			return true
		}
		select {
		case <-done:
			return false
		case <-t.Closed():
			// flush what was queued before the close
			for f, ok := t.TryNext(); ok; f, ok = t.TryNext() {
				c.SSEvent(f.View, f)
			}
			return false
		case <-t.Ready():
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}

func tabError(err error) error {
	if errors.Is(err, tab.ErrTabNotFound) {
		return appErrors.ErrTabNotFound
	}
	return err
}
