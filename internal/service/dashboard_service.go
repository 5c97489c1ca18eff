package service

import (
	"context"
	"sort"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/models"
)

// Time-of-day buckets used by the dashboard schedule.
const (
	morningStart   = 6
	afternoonStart = 12
	eveningStart   = 18
)

// DashboardService builds the home page summary.
type DashboardService struct {
	tasks taskReader
	exams examReader
	clock Clock
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(tasks taskReader, exams examReader, clock Clock) *DashboardService {
	return &DashboardService{tasks: tasks, exams: exams, clock: clock}
}

// Summary derives the dashboard for today from the current collections.
func (s *DashboardService) Summary(ctx context.Context) dto.DashboardSummary {
	return s.SummaryFor(ctx, s.clock.Today())
}

// SummaryFor derives the dashboard as seen on date.
func (s *DashboardService) SummaryFor(ctx context.Context, date string) dto.DashboardSummary {
	tasks := s.tasks.Read(ctx)
	upcoming := upcomingExams(s.exams.Read(ctx), date)
	stats := taskStats(tasks, date)

	summary := dto.DashboardSummary{
		Date:              date,
		UpcomingExamCount: len(upcoming),
		Overdue:           stats.Overdue,
		Pending:           stats.Pending,
		UpcomingExams:     upcoming,
	}

	groups := []dto.ScheduleGroup{
		{Name: "Morning"},
		{Name: "Afternoon"},
		{Name: "Evening"},
		{Name: "All Day"},
	}
	today := make([]models.Task, 0)
	for _, t := range tasks {
		if t.Date != date {
			continue
		}
		today = append(today, t)
		summary.TodayTotal++
		if t.Completed {
			summary.TodayCompleted++
		} else {
			summary.DueToday++
		}
	}
	sort.SliceStable(today, func(i, j int) bool { return valueOf(today[i].Time) < valueOf(today[j].Time) })
	for _, t := range today {
		entry := dto.ScheduledTask{Task: t, DueText: DueText(t.Date, date)}
		idx := scheduleBucket(t.Time)
		groups[idx].Tasks = append(groups[idx].Tasks, entry)
	}

	summary.Schedule = make([]dto.ScheduleGroup, 0, len(groups))
	for _, g := range groups {
		if len(g.Tasks) > 0 {
			summary.Schedule = append(summary.Schedule, g)
		}
	}
	return summary
}

func scheduleBucket(clock *string) int {
	hour, ok := hourOf(clock)
	switch {
	case !ok:
		return 3
	case hour >= morningStart && hour < afternoonStart:
		return 0
	case hour >= afternoonStart && hour < eveningStart:
		return 1
	default:
		return 2
	}
}
