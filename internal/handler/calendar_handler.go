package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/dto"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

type calendarService interface {
	Day(ctx context.Context, date string) (*dto.DayDetails, error)
	Toggle(ctx context.Context, date string) (bool, error)
	IsImportant(ctx context.Context, date string) bool
	Month(ctx context.Context, year, month int) ([]string, error)
}

// CalendarHandler serves day details and important-day marks.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(svc calendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// Day godoc
// @Summary Tasks, exams and importance of one day
// @Tags Calendar
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /calendar/days/{date} [get]
func (h *CalendarHandler) Day(c *gin.Context) {
	date, ok := pathDate(c)
	if !ok {
		return
	}
	details, err := h.service.Day(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, details)
}

// ToggleImportant godoc
// @Summary Flip the manual important mark of a day
// @Tags Calendar
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /calendar/days/{date}/important [post]
func (h *CalendarHandler) ToggleImportant(c *gin.Context) {
	date, ok := pathDate(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	manual, err := h.service.Toggle(ctx, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ImportantToggleResult{Date: date, Manual: manual, Important: h.service.IsImportant(ctx, date)})
}

// Important godoc
// @Summary Important dates of a month
// @Tags Calendar
// @Produce json
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} response.Envelope
// @Router /calendar/important [get]
func (h *CalendarHandler) Important(c *gin.Context) {
	year, yerr := strconv.Atoi(c.Query("year"))
	month, merr := strconv.Atoi(c.Query("month"))
	if yerr != nil || merr != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year and month are required"))
		return
	}
	dates, err := h.service.Month(c.Request.Context(), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ImportantMonth{Year: year, Month: month, Dates: dates})
}
