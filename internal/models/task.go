package models

import (
	"time"

	"github.com/yukikurage/taskflow/internal/constants"
)

type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Date        string    `json:"date"`
	Priority    bool      `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsOn reports whether the task is scheduled on the calendar day of t.
func (t Task) IsOn(day time.Time) bool {
	return t.Date == DateOf(day)
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) string {
	return t.Format(constants.DateLayout)
}

// ParseDate parses a calendar date in the canonical layout.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(constants.DateLayout, s, loc)
}
