package models

import "time"

// Exam is a scheduled test stored under KeyExams.
type Exam struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Subject   Subject   `json:"subject"`
	Date      string    `json:"date"`
	Time      *string   `json:"time"`
	Location  *string   `json:"location"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}
