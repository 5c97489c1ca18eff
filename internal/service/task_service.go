package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

type taskCollection interface {
	Read(ctx context.Context) []models.Task
	Write(ctx context.Context, tasks []models.Task) error
}

// CreateTaskRequest describes a new homework item.
type CreateTaskRequest struct {
	Title    string          `json:"title" validate:"required"`
	Subject  models.Subject  `json:"subject" validate:"required,subject"`
	Date     string          `json:"date" validate:"required,isodate"`
	Time     *string         `json:"time" validate:"omitempty,clock"`
	Priority models.Priority `json:"priority" validate:"omitempty,priority"`
	Notes    *string         `json:"notes"`
}

// UpdateTaskRequest carries the fields to change. Nil fields keep their value;
// an empty time or notes clears it.
type UpdateTaskRequest struct {
	Title    *string          `json:"title" validate:"omitnil,min=1"`
	Subject  *models.Subject  `json:"subject" validate:"omitnil,subject"`
	Date     *string          `json:"date" validate:"omitnil,isodate"`
	Time     *string          `json:"time" validate:"omitempty,clock"`
	Priority *models.Priority `json:"priority" validate:"omitnil,priority"`
	Notes    *string          `json:"notes"`
}

// TaskService owns every mutation of the task collection.
type TaskService struct {
	tasks     taskCollection
	ids       *models.IDGenerator
	validator *validator.Validate
	clock     Clock
	logger    *zap.Logger
}

// NewTaskService creates a task service.
func NewTaskService(tasks taskCollection, ids *models.IDGenerator, validate *validator.Validate, clock Clock, logger *zap.Logger) *TaskService {
	if ids == nil {
		ids = models.NewIDGenerator(clock.Now)
	}
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{tasks: tasks, ids: ids, validator: validate, clock: clock, logger: logger}
}

// Create appends a new incomplete task.
func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest) (*models.Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "task")
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	tasks := s.tasks.Read(ctx)
	task := models.Task{
		ID:        s.ids.Next(taskIDTaken(tasks)),
		Title:     req.Title,
		Subject:   req.Subject,
		Date:      req.Date,
		Time:      optionalText(req.Time),
		Priority:  req.Priority,
		Notes:     optionalText(req.Notes),
		CreatedAt: s.clock.now(),
	}
	tasks = append(tasks, task)
	if err := s.tasks.Write(ctx, tasks); err != nil {
		return nil, storeFailure(err, "save task")
	}
	s.logger.Debug("task created", zap.Int64("task_id", task.ID))
	return &task, nil
}

// Update merges req into the stored task. Completion state and creation time are kept.
func (s *TaskService) Update(ctx context.Context, id int64, req UpdateTaskRequest) (*models.Task, error) {
	req.Title = trimPtr(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "task")
	}

	tasks := s.tasks.Read(ctx)
	idx := findTask(tasks, id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
	}
	task := tasks[idx]
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Subject != nil {
		task.Subject = *req.Subject
	}
	if req.Date != nil {
		task.Date = *req.Date
	}
	if req.Time != nil {
		task.Time = optionalText(req.Time)
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Notes != nil {
		task.Notes = optionalText(req.Notes)
	}
	tasks[idx] = task
	if err := s.tasks.Write(ctx, tasks); err != nil {
		return nil, storeFailure(err, "update task")
	}
	return &task, nil
}

// Delete removes the task with id and leaves every other task untouched.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	tasks := s.tasks.Read(ctx)
	kept := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return appErrors.Clone(appErrors.ErrNotFound, "task not found")
	}
	if err := s.tasks.Write(ctx, kept); err != nil {
		return storeFailure(err, "delete task")
	}
	return nil
}

// ToggleComplete flips the completed flag and stamps or clears completedAt.
func (s *TaskService) ToggleComplete(ctx context.Context, id int64) (*models.Task, error) {
	tasks := s.tasks.Read(ctx)
	idx := findTask(tasks, id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
	}
	task := tasks[idx]
	task.Completed = !task.Completed
	if task.Completed {
		now := s.clock.now()
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}
	tasks[idx] = task
	if err := s.tasks.Write(ctx, tasks); err != nil {
		return nil, storeFailure(err, "toggle task")
	}
	return &task, nil
}

// Get returns one task.
func (s *TaskService) Get(ctx context.Context, id int64) (*models.Task, error) {
	tasks := s.tasks.Read(ctx)
	idx := findTask(tasks, id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
	}
	return &tasks[idx], nil
}

// List filters and sorts tasks. An unknown status or sort is a validation error.
func (s *TaskService) List(ctx context.Context, q models.TaskQuery) ([]models.Task, error) {
	if q.Status == "" {
		q.Status = models.TaskStatusAll
	}
	today := s.clock.Today()
	match, ok := statusFilter(q.Status, today)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status "+string(q.Status))
	}
	less, ok := taskOrder(q.Sort)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown sort "+string(q.Sort))
	}

	needle := strings.ToLower(strings.TrimSpace(q.Search))
	result := make([]models.Task, 0)
	for _, t := range s.tasks.Read(ctx) {
		if needle != "" && !taskMatches(t, needle) {
			continue
		}
		if !match(t) {
			continue
		}
		result = append(result, t)
	}
	if less != nil {
		sort.SliceStable(result, func(i, j int) bool { return less(result[i], result[j]) })
	}
	return result, nil
}

// Stats counts tasks across the whole collection.
func (s *TaskService) Stats(ctx context.Context) models.TaskStats {
	return taskStats(s.tasks.Read(ctx), s.clock.Today())
}

// PendingCount is the number of incomplete tasks shown on the sidebar badge.
func (s *TaskService) PendingCount(ctx context.Context) int {
	return s.Stats(ctx).Pending
}

func taskStats(tasks []models.Task, today string) models.TaskStats {
	stats := models.TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			stats.Completed++
			continue
		}
		stats.Pending++
		if t.Overdue(today) {
			stats.Overdue++
		}
	}
	return stats
}

func findTask(tasks []models.Task, id int64) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func taskIDTaken(tasks []models.Task) func(int64) bool {
	return func(id int64) bool { return findTask(tasks, id) >= 0 }
}

func taskMatches(t models.Task, needle string) bool {
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	return t.Notes != nil && strings.Contains(strings.ToLower(*t.Notes), needle)
}

func statusFilter(status models.TaskStatus, today string) (func(models.Task) bool, bool) {
	switch status {
	case models.TaskStatusAll:
		return func(models.Task) bool { return true }, true
	case models.TaskStatusCompleted:
		return func(t models.Task) bool { return t.Completed }, true
	case models.TaskStatusPending:
		return func(t models.Task) bool { return !t.Completed }, true
	case models.TaskStatusOverdue:
		return func(t models.Task) bool { return t.Overdue(today) }, true
	default:
		return nil, false
	}
}

func taskOrder(order models.TaskSort) (func(a, b models.Task) bool, bool) {
	switch order {
	case models.TaskSortNone:
		return nil, true
	case models.TaskSortDateAsc:
		return func(a, b models.Task) bool { return a.Date < b.Date }, true
	case models.TaskSortDateDesc:
		return func(a, b models.Task) bool { return a.Date > b.Date }, true
	case models.TaskSortPriority:
		return func(a, b models.Task) bool { return a.Priority.Rank() < b.Priority.Rank() }, true
	case models.TaskSortSubject:
		return func(a, b models.Task) bool { return a.Subject < b.Subject }, true
	default:
		return nil, false
	}
}
