package models

import "time"

// Subject is one of the fixed course categories.
type Subject string

const (
	SubjectMath    Subject = "math"
	SubjectScience Subject = "science"
	SubjectEnglish Subject = "english"
	SubjectHistory Subject = "history"
	SubjectOther   Subject = "other"
)

// Subjects lists every accepted subject.
var Subjects = []Subject{SubjectMath, SubjectScience, SubjectEnglish, SubjectHistory, SubjectOther}

// Priority ranks a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists priorities from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Rank orders priorities: high is 0. Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Task is a homework item stored under KeyTasks.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Subject     Subject    `json:"subject"`
	Date        string     `json:"date"`
	Time        *string    `json:"time"`
	Priority    Priority   `json:"priority"`
	Notes       *string    `json:"notes"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Overdue reports whether the task is incomplete and dated before today.
func (t Task) Overdue(today string) bool {
	return !t.Completed && t.Date != "" && t.Date < today
}

// TaskStats summarises the whole task collection.
type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
}

// TaskStatus filters a task listing.
type TaskStatus string

const (
	TaskStatusAll       TaskStatus = "all"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusOverdue   TaskStatus = "overdue"
)

// TaskSort orders a task listing.
type TaskSort string

const (
	TaskSortNone     TaskSort = ""
	TaskSortDateAsc  TaskSort = "date-asc"
	TaskSortDateDesc TaskSort = "date-desc"
	TaskSortPriority TaskSort = "priority"
	TaskSortSubject  TaskSort = "subject"
)

// TaskQuery captures list filters.
type TaskQuery struct {
	Search string     `form:"search"`
	Status TaskStatus `form:"status"`
	Sort   TaskSort   `form:"sort"`
}
