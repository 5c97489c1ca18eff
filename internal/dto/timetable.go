package dto

// TimetableWeek is a Monday-first grid of hourly slots.
type TimetableWeek struct {
	WeekStart string          `json:"weekStart"`
	Days      []string        `json:"days"`
	Hours     []int           `json:"hours"`
	Entries   []TimetableSlot `json:"entries"`
	Empty     bool            `json:"empty"`
}

// TimetableSlot places one task or exam in the grid.
type TimetableSlot struct {
	Kind     string `json:"kind"`
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Subject  string `json:"subject"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	DayIndex int    `json:"dayIndex"`
	Hour     int    `json:"hour"`
}
