package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/middleware"
	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/service"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

type examService interface {
	Create(ctx context.Context, req service.CreateExamRequest) (*models.Exam, error)
	Update(ctx context.Context, id int64, req service.UpdateExamRequest) (*models.Exam, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Exam, error)
	List(ctx context.Context) []models.Exam
	Upcoming(ctx context.Context) []dto.UpcomingExam
}

// ExamHandler exposes the exam schedule.
type ExamHandler struct {
	service examService
}

// NewExamHandler constructs the handler.
func NewExamHandler(svc examService) *ExamHandler {
	return &ExamHandler{service: svc}
}

// List godoc
// @Summary List exams by date
// @Tags Exams
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	exams := h.service.List(c.Request.Context())
	middleware.SetMeta(c, "count", len(exams))
	response.OK(c, exams, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Add an exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body service.CreateExamRequest true "Exam"
// @Success 201 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var req service.CreateExamRequest
	if !bindJSON(c, &req, "exam") {
		return
	}
	exam, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Upcoming godoc
// @Summary Exams in the next seven days
// @Tags Exams
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /exams/upcoming [get]
func (h *ExamHandler) Upcoming(c *gin.Context) {
	response.OK(c, h.service.Upcoming(c.Request.Context()))
}

// Get godoc
// @Summary Get an exam
// @Tags Exams
// @Produce json
// @Param id path int true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	exam, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, exam)
}

// Update godoc
// @Summary Merge changes into an exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path int true "Exam ID"
// @Param payload body service.UpdateExamRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [put]
func (h *ExamHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateExamRequest
	if !bindJSON(c, &req, "exam") {
		return
	}
	exam, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, exam)
}

// Delete godoc
// @Summary Delete an exam
// @Tags Exams
// @Param id path int true "Exam ID"
// @Success 204
// @Router /exams/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
