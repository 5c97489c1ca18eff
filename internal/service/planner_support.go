package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Clock supplies the current instant and the zone that decides which calendar day it is.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func (c Clock) now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	if c.Now == nil {
		return time.Now().In(loc)
	}
	return c.Now().In(loc)
}

// Today is the current date as YYYY-MM-DD.
func (c Clock) Today() string {
	return c.now().Format(dateLayout)
}

// NewValidator returns a validator with the planner's isodate, clock, subject
// and priority tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, ok := parseDate(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return isClock(fl.Field().String())
	})
	_ = v.RegisterValidation("subject", func(fl validator.FieldLevel) bool {
		return isSubject(models.Subject(fl.Field().String()))
	})
	_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return models.Priority(fl.Field().String()).Rank() < 3
	})
	return v
}

func parseDate(raw string) (time.Time, bool) {
	if len(raw) != len(dateLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func isClock(raw string) bool {
	if len(raw) != len(clockLayout) {
		return false
	}
	_, err := time.Parse(clockLayout, raw)
	return err == nil
}

func isSubject(s models.Subject) bool {
	for _, known := range models.Subjects {
		if s == known {
			return true
		}
	}
	return false
}

// daysBetween counts calendar days from -> to. Unparsable input yields 0.
func daysBetween(from, to string) int {
	f, ok := parseDate(from)
	if !ok {
		return 0
	}
	t, ok := parseDate(to)
	if !ok {
		return 0
	}
	return int(t.Sub(f).Hours() / 24)
}

func addDays(date string, days int) string {
	t, ok := parseDate(date)
	if !ok {
		return date
	}
	return t.AddDate(0, 0, days).Format(dateLayout)
}

// hourOf returns the hour of an HH:MM value.
func hourOf(clock *string) (int, bool) {
	if clock == nil || !isClock(*clock) {
		return 0, false
	}
	t, _ := time.Parse(clockLayout, *clock)
	return t.Hour(), true
}

// optionalText trims s and turns blank into nil.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

// DueText describes a due date relative to today.
func DueText(date, today string) string {
	if date == "" {
		return "No due date"
	}
	if _, ok := parseDate(date); !ok {
		return "No due date"
	}
	diff := daysBetween(today, date)
	switch {
	case diff == 0:
		return "Due Today"
	case diff == 1:
		return "Due Tomorrow"
	case diff == -1:
		return "Due Yesterday"
	case diff < 0:
		return "Overdue by " + strconv.Itoa(-diff) + " days"
	default:
		return "Due in " + strconv.Itoa(diff) + " days"
	}
}

func storeFailure(err error, action string) error {
	return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to "+action)
}

func invalid(err error, what string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+what+" payload")
}
