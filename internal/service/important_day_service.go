package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

type dayCollection interface {
	Read(ctx context.Context) []string
	Write(ctx context.Context, days []string) error
}

type taskReader interface {
	Read(ctx context.Context) []models.Task
}

type examReader interface {
	Read(ctx context.Context) []models.Exam
}

// ImportantDayService classifies dates as important. A date is important when
// the user marked it or when a high-priority task or any exam falls on it.
type ImportantDayService struct {
	days   dayCollection
	tasks  taskReader
	exams  examReader
	logger *zap.Logger
}

// NewImportantDayService creates the classifier.
func NewImportantDayService(days dayCollection, tasks taskReader, exams examReader, logger *zap.Logger) *ImportantDayService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportantDayService{days: days, tasks: tasks, exams: exams, logger: logger}
}

// IsAutoImportant is recomputed from the current collections on every call.
func (s *ImportantDayService) IsAutoImportant(ctx context.Context, date string) bool {
	return autoImportant(date, s.tasks.Read(ctx), s.exams.Read(ctx))
}

// IsManual reports whether the user marked date.
func (s *ImportantDayService) IsManual(ctx context.Context, date string) bool {
	return contains(s.days.Read(ctx), date)
}

// IsImportant is manual OR automatic.
func (s *ImportantDayService) IsImportant(ctx context.Context, date string) bool {
	return s.IsManual(ctx, date) || s.IsAutoImportant(ctx, date)
}

// Toggle flips the manual mark on date and returns the new mark. Dates that
// are already important automatically cannot be toggled.
func (s *ImportantDayService) Toggle(ctx context.Context, date string) (bool, error) {
	if _, ok := parseDate(date); !ok {
		return false, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	if s.IsAutoImportant(ctx, date) {
		return false, appErrors.ErrAutoImportant
	}
	days := s.days.Read(ctx)
	marked := !contains(days, date)
	if marked {
		days = append(days, date)
	} else {
		days = remove(days, date)
	}
	if err := s.days.Write(ctx, days); err != nil {
		return false, storeFailure(err, "save important days")
	}
	return marked, nil
}

// Day gathers the tasks, exams and importance of date.
func (s *ImportantDayService) Day(ctx context.Context, date string) (*dto.DayDetails, error) {
	if _, ok := parseDate(date); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	tasks := s.tasks.Read(ctx)
	exams := s.exams.Read(ctx)
	details := &dto.DayDetails{
		Date:          date,
		Tasks:         make([]models.Task, 0),
		Exams:         make([]models.Exam, 0),
		AutoImportant: autoImportant(date, tasks, exams),
		Manual:        contains(s.days.Read(ctx), date),
	}
	details.Important = details.Manual || details.AutoImportant
	for _, t := range tasks {
		if t.Date == date {
			details.Tasks = append(details.Tasks, t)
		}
	}
	for _, e := range exams {
		if e.Date == date {
			details.Exams = append(details.Exams, e)
		}
	}
	return details, nil
}

// Month lists the important dates of year-month in ascending order.
func (s *ImportantDayService) Month(ctx context.Context, year, month int) ([]string, error) {
	if month < 1 || month > 12 || year < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid year or month")
	}
	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	set := map[string]struct{}{}
	inMonth := func(date string) bool {
		_, ok := parseDate(date)
		return ok && len(date) == 10 && date[:8] == prefix
	}
	for _, d := range s.days.Read(ctx) {
		if inMonth(d) {
			set[d] = struct{}{}
		}
	}
	for _, t := range s.tasks.Read(ctx) {
		if t.Priority == models.PriorityHigh && inMonth(t.Date) {
			set[t.Date] = struct{}{}
		}
	}
	for _, e := range s.exams.Read(ctx) {
		if inMonth(e.Date) {
			set[e.Date] = struct{}{}
		}
	}
	dates := make([]string, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates, nil
}

func autoImportant(date string, tasks []models.Task, exams []models.Exam) bool {
	for _, t := range tasks {
		if t.Date == date && t.Priority == models.PriorityHigh {
			return true
		}
	}
	for _, e := range exams {
		if e.Date == date {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func remove(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
