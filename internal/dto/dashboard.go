package dto

import "github.com/noah-isme/study-planner-api/internal/models"

// DashboardSummary is the home page snapshot for one day.
type DashboardSummary struct {
	Date              string          `json:"date"`
	TodayTotal        int             `json:"todayTotal"`
	TodayCompleted    int             `json:"todayCompleted"`
	DueToday          int             `json:"dueToday"`
	UpcomingExamCount int             `json:"upcomingExamCount"`
	Overdue           int             `json:"overdue"`
	Pending           int             `json:"pending"`
	Schedule          []ScheduleGroup `json:"schedule"`
	UpcomingExams     []UpcomingExam  `json:"upcomingExams"`
}

// ScheduleGroup buckets the day's tasks by time of day. Empty groups are omitted.
type ScheduleGroup struct {
	Name  string          `json:"name"`
	Tasks []ScheduledTask `json:"tasks"`
}

// ScheduledTask is a task with its relative due text.
type ScheduledTask struct {
	models.Task
	DueText string `json:"dueText"`
}

// UpcomingExam is an exam with its countdown in days.
type UpcomingExam struct {
	models.Exam
	DaysRemaining int `json:"daysRemaining"`
}
