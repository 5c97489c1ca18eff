package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/dto"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context) dto.DashboardSummary
	SummaryFor(ctx context.Context, date string) dto.DashboardSummary
}

type timetableService interface {
	Week(ctx context.Context, anchor string) (*dto.TimetableWeek, error)
}

// DashboardHandler wires the overview screens to HTTP endpoints.
type DashboardHandler struct {
	dashboard dashboardService
	timetable timetableService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard dashboardService, timetable timetableService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, timetable: timetable}
}

// Summary godoc
// @Summary Dashboard summary
// @Tags Dashboard
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.dashboard == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	dateStr := strings.TrimSpace(c.Query("date"))
	if dateStr == "" {
		response.OK(c, h.dashboard.Summary(c.Request.Context()))
		return
	}
	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD"))
		return
	}
	response.OK(c, h.dashboard.SummaryFor(c.Request.Context(), dateStr))
}

// Timetable godoc
// @Summary Weekly timetable grid
// @Tags Dashboard
// @Produce json
// @Param date query string false "Any date in the week. Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *DashboardHandler) Timetable(c *gin.Context) {
	if h.timetable == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	week, err := h.timetable.Week(c.Request.Context(), strings.TrimSpace(c.Query("date")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, week)
}
