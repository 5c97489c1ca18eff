package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

// upcomingExamDays is how far ahead the dashboard and upcoming list look.
const upcomingExamDays = 7

type examCollection interface {
	Read(ctx context.Context) []models.Exam
	Write(ctx context.Context, exams []models.Exam) error
}

// CreateExamRequest describes a new exam.
type CreateExamRequest struct {
	Title    string         `json:"title" validate:"required"`
	Subject  models.Subject `json:"subject" validate:"required,subject"`
	Date     string         `json:"date" validate:"required,isodate"`
	Time     *string        `json:"time" validate:"omitempty,clock"`
	Location *string        `json:"location"`
	Notes    *string        `json:"notes"`
}

// UpdateExamRequest carries the exam fields to change.
type UpdateExamRequest struct {
	Title    *string         `json:"title" validate:"omitnil,min=1"`
	Subject  *models.Subject `json:"subject" validate:"omitnil,subject"`
	Date     *string         `json:"date" validate:"omitnil,isodate"`
	Time     *string         `json:"time" validate:"omitempty,clock"`
	Location *string         `json:"location"`
	Notes    *string         `json:"notes"`
}

// ExamService owns the exam collection.
type ExamService struct {
	exams     examCollection
	ids       *models.IDGenerator
	validator *validator.Validate
	clock     Clock
	logger    *zap.Logger
}

// NewExamService creates an exam service.
func NewExamService(exams examCollection, ids *models.IDGenerator, validate *validator.Validate, clock Clock, logger *zap.Logger) *ExamService {
	if ids == nil {
		ids = models.NewIDGenerator(clock.Now)
	}
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{exams: exams, ids: ids, validator: validate, clock: clock, logger: logger}
}

// Create appends a new exam.
func (s *ExamService) Create(ctx context.Context, req CreateExamRequest) (*models.Exam, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "exam")
	}
	exams := s.exams.Read(ctx)
	exam := models.Exam{
		ID:        s.ids.Next(func(id int64) bool { return findExam(exams, id) >= 0 }),
		Title:     req.Title,
		Subject:   req.Subject,
		Date:      req.Date,
		Time:      optionalText(req.Time),
		Location:  optionalText(req.Location),
		Notes:     optionalText(req.Notes),
		CreatedAt: s.clock.now(),
	}
	exams = append(exams, exam)
	if err := s.exams.Write(ctx, exams); err != nil {
		return nil, storeFailure(err, "save exam")
	}
	return &exam, nil
}

// Update merges req into the stored exam.
func (s *ExamService) Update(ctx context.Context, id int64, req UpdateExamRequest) (*models.Exam, error) {
	req.Title = trimPtr(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "exam")
	}
	exams := s.exams.Read(ctx)
	idx := findExam(exams, id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
	}
	exam := exams[idx]
	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Subject != nil {
		exam.Subject = *req.Subject
	}
	if req.Date != nil {
		exam.Date = *req.Date
	}
	if req.Time != nil {
		exam.Time = optionalText(req.Time)
	}
	if req.Location != nil {
		exam.Location = optionalText(req.Location)
	}
	if req.Notes != nil {
		exam.Notes = optionalText(req.Notes)
	}
	exams[idx] = exam
	if err := s.exams.Write(ctx, exams); err != nil {
		return nil, storeFailure(err, "update exam")
	}
	return &exam, nil
}

// Delete removes the exam with id.
func (s *ExamService) Delete(ctx context.Context, id int64) error {
	exams := s.exams.Read(ctx)
	kept := make([]models.Exam, 0, len(exams))
	for _, e := range exams {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(exams) {
		return appErrors.Clone(appErrors.ErrNotFound, "exam not found")
	}
	if err := s.exams.Write(ctx, kept); err != nil {
		return storeFailure(err, "delete exam")
	}
	return nil
}

// Get returns one exam.
func (s *ExamService) Get(ctx context.Context, id int64) (*models.Exam, error) {
	exams := s.exams.Read(ctx)
	idx := findExam(exams, id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
	}
	return &exams[idx], nil
}

// List returns all exams by date.
func (s *ExamService) List(ctx context.Context) []models.Exam {
	exams := s.exams.Read(ctx)
	sortExams(exams)
	return exams
}

// Upcoming returns exams dated within the next seven days, today included.
func (s *ExamService) Upcoming(ctx context.Context) []dto.UpcomingExam {
	return upcomingExams(s.exams.Read(ctx), s.clock.Today())
}

func upcomingExams(exams []models.Exam, today string) []dto.UpcomingExam {
	until := addDays(today, upcomingExamDays)
	result := make([]dto.UpcomingExam, 0)
	for _, e := range exams {
		if e.Date < today || e.Date > until {
			continue
		}
		result = append(result, dto.UpcomingExam{Exam: e, DaysRemaining: daysBetween(today, e.Date)})
	}
	sort.SliceStable(result, func(i, j int) bool { return examBefore(result[i].Exam, result[j].Exam) })
	return result
}

func sortExams(exams []models.Exam) {
	sort.SliceStable(exams, func(i, j int) bool { return examBefore(exams[i], exams[j]) })
}

func examBefore(a, b models.Exam) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return valueOf(a.Time) < valueOf(b.Time)
}

func findExam(exams []models.Exam, id int64) int {
	for i, e := range exams {
		if e.ID == id {
			return i
		}
	}
	return -1
}
