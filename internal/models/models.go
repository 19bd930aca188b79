// Package models defines the wire and storage types shared across the
// application. All JSON field names are fixed camelCase; there is no
// tolerance for alternative casings at the deserialization boundary.
package models

import "time"

// Frequency is the closed set of habit recurrence rules.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekdays Frequency = "weekdays"
	FrequencyWeekends Frequency = "weekends"
	FrequencyCustom   Frequency = "custom"
)

// Valid reports whether f is one of the defined recurrence variants.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekdays, FrequencyWeekends, FrequencyCustom:
		return true
	}
	return false
}

// Habit is a user-defined recurring intention.
//
// CustomDays holds weekday indices, Sunday-first (0=Sunday .. 6=Saturday),
// and is only meaningful when Frequency is "custom". An empty set is legal
// and makes the habit never due.
type Habit struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Color                 string    `json:"color"`
	Frequency             Frequency `json:"frequency"`
	CustomDays            []int     `json:"customDays,omitempty"`
	TargetDurationMinutes int       `json:"targetDurationMinutes,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
}

// EntryKind distinguishes recurring habit occurrences from one-off plan
// tasks. Task entries carry their own title and are excluded from due and
// streak computation.
type EntryKind string

const (
	EntryKindHabit EntryKind = "habit"
	EntryKindTask  EntryKind = "task"
)

// Entry is one calendar day's occurrence record.
//
// Date is truncated to UTC midnight; identity within a day is (HabitID, Date)
// for habit entries. ScheduledTime and ActualTime use "HH:MM".
type Entry struct {
	ID              string     `json:"id"`
	Kind            EntryKind  `json:"kind"`
	HabitID         string     `json:"habitId,omitempty"`
	Title           string     `json:"title,omitempty"`
	Date            time.Time  `json:"date"`
	ScheduledTime   string     `json:"scheduledTime"`
	ActualTime      string     `json:"actualTime,omitempty"`
	DurationMinutes int        `json:"durationMinutes,omitempty"`
	Completed       bool       `json:"completed"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Note is a freeform text record.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Idea is a captured thought; it may later be decomposed into plan tasks
// by the AI layer.
type Idea struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Pinned      bool      `json:"pinned"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AuthProvider identifies how a user account was established.
type AuthProvider string

const (
	ProviderEmail    AuthProvider = "email"
	ProviderGoogle   AuthProvider = "google"
	ProviderFacebook AuthProvider = "facebook"
)

// User owns habits, entries, notes and ideas. PasswordHash is never
// serialized.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Provider     AuthProvider `json:"authProvider"`
	PasswordHash string       `json:"-"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// PlanTask is one AI-proposed calendar item.
type PlanTask struct {
	Title           string `json:"title"`
	Date            string `json:"date"` // YYYY-MM-DD
	Time            string `json:"time"` // HH:MM
	DurationMinutes int    `json:"durationMinutes"`
	Notes           string `json:"notes,omitempty"`
}

// PlanAnalysis is the result of AI plan decomposition.
type PlanAnalysis struct {
	Summary string     `json:"summary"`
	Tasks   []PlanTask `json:"tasks"`
}

// HabitNudge is an AI suggestion for a habit not yet completed today.
type HabitNudge struct {
	HabitName     string `json:"habitName"`
	HabitID       string `json:"habitId"`
	SuggestedTime string `json:"suggestedTime"`
	Message       string `json:"message"`
}
