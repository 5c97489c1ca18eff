package dto

import "github.com/noah-isme/study-planner-api/internal/models"

// DayDetails is everything the calendar shows for one date.
type DayDetails struct {
	Date          string        `json:"date"`
	Tasks         []models.Task `json:"tasks"`
	Exams         []models.Exam `json:"exams"`
	Important     bool          `json:"important"`
	AutoImportant bool          `json:"autoImportant"`
	Manual        bool          `json:"manual"`
}

// ImportantMonth lists the important dates of a calendar month.
type ImportantMonth struct {
	Year  int      `json:"year"`
	Month int      `json:"month"`
	Dates []string `json:"dates"`
}

// ImportantToggleResult reports the manual mark after a toggle.
type ImportantToggleResult struct {
	Date      string `json:"date"`
	Manual    bool   `json:"manual"`
	Important bool   `json:"important"`
}
