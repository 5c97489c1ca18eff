package tab

import (
	"context"
	"time"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/signal"
)

// View names.
const (
	ViewTasks         = "tasks"
	ViewBadge         = "badge"
	ViewDashboard     = "dashboard"
	ViewCalendar      = "calendar"
	ViewTimetable     = "timetable"
	ViewNotifications = "notifications"
	ViewReminder      = "reminder"
)

// View re-derives one screen region whenever any of its keys change.
type View struct {
	Name   string
	Keys   []models.Key
	Render func(ctx context.Context) (any, error)
}

// TasksView is the task list panel.
type TasksView struct {
	Tasks []models.Task    `json:"tasks"`
	Stats models.TaskStats `json:"stats"`
}

// BadgeView is the sidebar pending counter.
type BadgeView struct {
	Pending int `json:"pending"`
}

// NotificationsView is the notification panel.
type NotificationsView struct {
	Entries []models.NotificationLogEntry `json:"entries"`
	Count   int                           `json:"count"`
}

// Sources are the read operations views render from.
type Sources struct {
	Tasks interface {
		List(ctx context.Context, q models.TaskQuery) ([]models.Task, error)
		Stats(ctx context.Context) models.TaskStats
		PendingCount(ctx context.Context) int
	}
	Dashboard interface {
		Summary(ctx context.Context) dto.DashboardSummary
	}
	Calendar interface {
		Month(ctx context.Context, year, month int) ([]string, error)
	}
	Timetable interface {
		Week(ctx context.Context, anchor string) (*dto.TimetableWeek, error)
	}
	Notifications interface {
		Log(ctx context.Context) []models.NotificationLogEntry
	}
	Now func() time.Time
}

// DefaultViews builds the views mounted on every tab.
func DefaultViews(src Sources) []View {
	now := src.Now
	if now == nil {
		now = time.Now
	}
	return []View{
		{
			Name: ViewTasks,
			Keys: []models.Key{models.KeyTasks},
			Render: func(ctx context.Context) (any, error) {
				tasks, err := src.Tasks.List(ctx, models.TaskQuery{})
				if err != nil {
					return nil, err
				}
				return TasksView{Tasks: tasks, Stats: src.Tasks.Stats(ctx)}, nil
			},
		},
		{
			Name: ViewBadge,
			Keys: []models.Key{models.KeyTasks},
			Render: func(ctx context.Context) (any, error) {
				return BadgeView{Pending: src.Tasks.PendingCount(ctx)}, nil
			},
		},
		{
			Name: ViewDashboard,
			Keys: []models.Key{models.KeyTasks, models.KeyExams},
			Render: func(ctx context.Context) (any, error) {
				return src.Dashboard.Summary(ctx), nil
			},
		},
		{
			Name: ViewCalendar,
			Keys: []models.Key{models.KeyTasks, models.KeyExams, models.KeyImportantDays},
			Render: func(ctx context.Context) (any, error) {
				current := now()
				dates, err := src.Calendar.Month(ctx, current.Year(), int(current.Month()))
				if err != nil {
					return nil, err
				}
				return dto.ImportantMonth{Year: current.Year(), Month: int(current.Month()), Dates: dates}, nil
			},
		},
		{
			Name: ViewTimetable,
			Keys: []models.Key{models.KeyTasks, models.KeyExams},
			Render: func(ctx context.Context) (any, error) {
				return src.Timetable.Week(ctx, "")
			},
		},
		{
			Name: ViewNotifications,
			Keys: []models.Key{models.KeyNotifications},
			Render: func(ctx context.Context) (any, error) {
				entries := src.Notifications.Log(ctx)
				return NotificationsView{Entries: entries, Count: len(entries)}, nil
			},
		},
	}
}

// mount wires every view to the signals of its keys on a fresh bus.
func mount(t *Tab, views []View) *signal.Bus {
	bus := signal.NewBus()
	for _, v := range views {
		v := v
		for _, k := range v.Keys {
			name, ok := k.SignalFor()
			if !ok {
				continue
			}
			bus.On(name, func(ctx context.Context, _ models.Signal) {
				t.render(ctx, v, causeFrom(ctx))
			})
		}
	}
	return bus
}
