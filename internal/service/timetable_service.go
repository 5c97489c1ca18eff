package service

import (
	"context"
	"sort"
	"time"

	"github.com/noah-isme/study-planner-api/internal/dto"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

const (
	timetableFirstHour = 8
	timetableLastHour  = 20
)

// TimetableService lays tasks and exams out on a weekly grid.
type TimetableService struct {
	tasks taskReader
	exams examReader
	clock Clock
}

// NewTimetableService creates a timetable service.
func NewTimetableService(tasks taskReader, exams examReader, clock Clock) *TimetableService {
	return &TimetableService{tasks: tasks, exams: exams, clock: clock}
}

// Week returns the Monday-first week containing anchor; an empty anchor means today.
func (s *TimetableService) Week(ctx context.Context, anchor string) (*dto.TimetableWeek, error) {
	if anchor == "" {
		anchor = s.clock.Today()
	}
	day, ok := parseDate(anchor)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	offset := weekdayIndex(day)
	monday := day.AddDate(0, 0, -offset)

	week := &dto.TimetableWeek{
		WeekStart: monday.Format(dateLayout),
		Days:      make([]string, 7),
		Hours:     make([]int, 0, timetableLastHour-timetableFirstHour+1),
		Entries:   make([]dto.TimetableSlot, 0),
		Empty:     true,
	}
	index := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i).Format(dateLayout)
		week.Days[i] = d
		index[d] = i
	}
	for h := timetableFirstHour; h <= timetableLastHour; h++ {
		week.Hours = append(week.Hours, h)
	}

	place := func(kind string, id int64, title, subject, date string, clock *string) {
		dayIndex, inWeek := index[date]
		if !inWeek {
			return
		}
		week.Empty = false
		hour, ok := hourOf(clock)
		if !ok || hour < timetableFirstHour || hour > timetableLastHour {
			return
		}
		week.Entries = append(week.Entries, dto.TimetableSlot{
			Kind: kind, ID: id, Title: title, Subject: subject,
			Date: date, Time: *clock, DayIndex: dayIndex, Hour: hour,
		})
	}
	for _, t := range s.tasks.Read(ctx) {
		place("task", t.ID, t.Title, string(t.Subject), t.Date, t.Time)
	}
	for _, e := range s.exams.Read(ctx) {
		place("exam", e.ID, e.Title, string(e.Subject), e.Date, e.Time)
	}
	sort.SliceStable(week.Entries, func(i, j int) bool {
		a, b := week.Entries[i], week.Entries[j]
		if a.DayIndex != b.DayIndex {
			return a.DayIndex < b.DayIndex
		}
		return a.Time < b.Time
	})
	return week, nil
}

// weekdayIndex maps a time to 0=Monday .. 6=Sunday.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
