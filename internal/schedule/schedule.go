// Package schedule implements the recurrence evaluator: pure calendar-date
// logic deciding whether a habit is due on a given day.
//
// Weekday indices are Sunday-first (0=Sunday .. 6=Saturday), matching
// conventional consumer calendar display. ISO weekday numbering is not used.
package schedule

import (
	"time"

	"github.com/daystack/daystack/internal/models"
)

// IsDue reports whether h's recurrence rule selects the calendar day of
// date. Time of day is ignored; only the day of week matters. A custom
// rule with an empty or absent day set is never due.
func IsDue(h models.Habit, date time.Time) bool {
	wd := int(date.Weekday())

	switch h.Frequency {
	case models.FrequencyDaily:
		return true
	case models.FrequencyWeekdays:
		return wd >= 1 && wd <= 5
	case models.FrequencyWeekends:
		return wd == 0 || wd == 6
	case models.FrequencyCustom:
		for _, d := range h.CustomDays {
			if d == wd {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// DayOf truncates t to its calendar day, normalized to UTC midnight so the
// result is a stable identity for the day regardless of the input location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b))
}

// ParseDay parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

// FormatDay renders t's calendar day as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return DayOf(t).Format("2006-01-02")
}
