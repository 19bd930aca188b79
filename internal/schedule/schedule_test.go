package schedule

import (
	"testing"
	"time"

	"github.com/daystack/daystack/internal/models"
)

// 2024-01-07 is a Sunday; the following seven days cover a full week.
func week() []time.Time {
	start := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

func TestIsDueDaily(t *testing.T) {
	h := models.Habit{Frequency: models.FrequencyDaily}
	for _, d := range week() {
		if !IsDue(h, d) {
			t.Errorf("daily habit not due on %s", d.Weekday())
		}
	}
}

func TestIsDueWeekdays(t *testing.T) {
	h := models.Habit{Frequency: models.FrequencyWeekdays}
	for _, d := range week() {
		want := d.Weekday() != time.Saturday && d.Weekday() != time.Sunday
		if got := IsDue(h, d); got != want {
			t.Errorf("weekdays habit on %s: due = %v, want %v", d.Weekday(), got, want)
		}
	}
}

func TestIsDueWeekends(t *testing.T) {
	h := models.Habit{Frequency: models.FrequencyWeekends}
	for _, d := range week() {
		want := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
		if got := IsDue(h, d); got != want {
			t.Errorf("weekends habit on %s: due = %v, want %v", d.Weekday(), got, want)
		}
	}
}

func TestIsDueCustom(t *testing.T) {
	// Monday and Thursday only (1 and 4, Sunday-first).
	h := models.Habit{Frequency: models.FrequencyCustom, CustomDays: []int{1, 4}}
	for _, d := range week() {
		want := d.Weekday() == time.Monday || d.Weekday() == time.Thursday
		if got := IsDue(h, d); got != want {
			t.Errorf("custom{Mon,Thu} on %s: due = %v, want %v", d.Weekday(), got, want)
		}
	}
}

func TestIsDueCustomEmptySet(t *testing.T) {
	h := models.Habit{Frequency: models.FrequencyCustom}
	for _, d := range week() {
		if IsDue(h, d) {
			t.Errorf("custom habit with no days due on %s", d.Weekday())
		}
	}
}

func TestIsDueIgnoresTimeOfDay(t *testing.T) {
	h := models.Habit{Frequency: models.FrequencyWeekdays}
	mondayEvening := time.Date(2024, 1, 8, 23, 45, 0, 0, time.UTC)
	if !IsDue(h, mondayEvening) {
		t.Error("weekdays habit not due on Monday evening")
	}
}

func TestIsDueUnknownFrequency(t *testing.T) {
	h := models.Habit{Frequency: "fortnightly"}
	if IsDue(h, time.Now()) {
		t.Error("unknown frequency treated as due")
	}
}

func TestDayOf(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2024, 3, 4, 18, 30, 12, 99, loc)
	got := DayOf(in)
	want := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DayOf = %v, want %v", got, want)
	}
}

func TestParseAndFormatDay(t *testing.T) {
	d, err := ParseDay("2024-03-04")
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	if d.Weekday() != time.Monday {
		t.Errorf("2024-03-04 weekday = %s, want Monday", d.Weekday())
	}
	if s := FormatDay(d); s != "2024-03-04" {
		t.Errorf("FormatDay = %q", s)
	}
}
