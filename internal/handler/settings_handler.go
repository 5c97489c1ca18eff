package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

type settingsService interface {
	Get(ctx context.Context) models.Settings
	Update(ctx context.Context, settings models.Settings) (models.Settings, error)
}

// SettingsHandler reads and writes user preferences.
type SettingsHandler struct {
	service settingsService
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(svc settingsService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// Get godoc
// @Summary Current settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	response.OK(c, h.service.Get(c.Request.Context()))
}

// Update godoc
// @Summary Replace settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body models.Settings true "Settings"
// @Success 200 {object} response.Envelope
// @Router /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req models.Settings
	if !bindJSON(c, &req, "settings") {
		return
	}
	settings, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, settings)
}
