package models

import "time"

// Settings holds user preferences under KeySettings.
type Settings struct {
	Notifications bool `json:"notifications"`
}

// DefaultSettings is what every reader assumes when nothing valid is stored.
func DefaultSettings() Settings {
	return Settings{Notifications: true}
}

// NotificationLogEntry records that a reminder was sent for a task.
type NotificationLogEntry struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// ExportDocument is the downloadable data file.
type ExportDocument struct {
	Tasks    []Task   `json:"tasks"`
	Exams    []Exam   `json:"exams"`
	Settings Settings `json:"settings"`
}
