package tracker

import (
	"time"

	"github.com/daystack/daystack/internal/models"
	"github.com/daystack/daystack/internal/schedule"
)

// maxStreakLookbackDays bounds the backward walk so a rule that is never
// due (custom with an empty day set) still terminates.
const maxStreakLookbackDays = 3650

// Streak counts consecutive due-and-completed days for h ending at today,
// walking backward one calendar day at a time. Days the habit is not due
// are skipped without breaking the streak, so a weekday habit survives the
// weekend. Today itself is treated as pending when due but not yet
// completed: it neither counts nor breaks.
//
// The walk is floored at the habit's creation date (and a hard lookback
// cap), so the result is a count of satisfied due days, not calendar days.
func Streak(h models.Habit, entries []models.Entry, today time.Time) int {
	day := schedule.DayOf(today)
	floor := schedule.DayOf(h.CreatedAt)
	isToday := true

	streak := 0
	for i := 0; i < maxStreakLookbackDays && !day.Before(floor); i++ {
		if !schedule.IsDue(h, day) {
			day = day.AddDate(0, 0, -1)
			isToday = false
			continue
		}
		if completedOn(entries, h.ID, day) {
			streak++
		} else if !isToday {
			break
		}
		day = day.AddDate(0, 0, -1)
		isToday = false
	}
	return streak
}

func completedOn(entries []models.Entry, habitID string, day time.Time) bool {
	for _, e := range entries {
		if e.Kind == models.EntryKindHabit && e.HabitID == habitID &&
			e.Completed && schedule.SameDay(e.Date, day) {
			return true
		}
	}
	return false
}
