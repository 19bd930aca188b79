package api

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/daystack/daystack/internal/models"
	"github.com/daystack/daystack/internal/schedule"
)

var timeOfDayRx = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// HabitRequest is the request body for creating a habit.
type HabitRequest struct {
	ID                    string           `json:"id"`
	Name                  string           `json:"name" example:"Morning run" validate:"required"`
	Color                 string           `json:"color" example:"#4f9d69"`
	Frequency             models.Frequency `json:"frequency" example:"weekdays" validate:"required"`
	CustomDays            []int            `json:"customDays" example:"1,3,5"`
	TargetDurationMinutes int              `json:"targetDurationMinutes" example:"30"`
}

// Validate checks habit creation requirements.
func (r HabitRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Frequency, validation.Required, validation.In(
			models.FrequencyDaily, models.FrequencyWeekdays, models.FrequencyWeekends, models.FrequencyCustom)),
		validation.Field(&r.CustomDays, validation.Each(validation.Min(0), validation.Max(6))),
		validation.Field(&r.TargetDurationMinutes, validation.Min(0)),
	)
}

func (r HabitRequest) habit() models.Habit {
	return models.Habit{
		ID:                    r.ID,
		Name:                  r.Name,
		Color:                 r.Color,
		Frequency:             r.Frequency,
		CustomDays:            r.CustomDays,
		TargetDurationMinutes: r.TargetDurationMinutes,
	}
}

// EntryRequest is the request body for creating or updating an entry.
// Date uses the YYYY-MM-DD calendar-day form.
type EntryRequest struct {
	ID              string           `json:"id"`
	Kind            models.EntryKind `json:"kind" example:"task"`
	HabitID         string           `json:"habitId"`
	Title           string           `json:"title" example:"Book dentist"`
	Date            string           `json:"date" example:"2025-03-04" validate:"required"`
	ScheduledTime   string           `json:"scheduledTime" example:"09:00"`
	ActualTime      string           `json:"actualTime" example:"09:20"`
	DurationMinutes int              `json:"durationMinutes" example:"30"`
	Completed       bool             `json:"completed"`
	Notes           string           `json:"notes"`
}

// Validate checks entry payload requirements. Task entries (no habit
// reference) must carry their own title.
func (r EntryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Date, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&r.Kind, validation.In(models.EntryKindHabit, models.EntryKindTask)),
		validation.Field(&r.Title, validation.Required.When(r.HabitID == "").Error("title is required for task entries")),
		validation.Field(&r.ScheduledTime, validation.Match(timeOfDayRx)),
		validation.Field(&r.ActualTime, validation.Match(timeOfDayRx)),
		validation.Field(&r.DurationMinutes, validation.Min(0)),
	)
}

func (r EntryRequest) entry() models.Entry {
	day, _ := schedule.ParseDay(r.Date)
	return models.Entry{
		ID:              r.ID,
		Kind:            r.Kind,
		HabitID:         r.HabitID,
		Title:           r.Title,
		Date:            day,
		ScheduledTime:   r.ScheduledTime,
		ActualTime:      r.ActualTime,
		DurationMinutes: r.DurationMinutes,
		Completed:       r.Completed,
		Notes:           r.Notes,
	}
}

// NoteRequest is the request body for creating or updating a note.
type NoteRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title" example:"Meeting notes" validate:"required"`
	Content string `json:"content"`
	Pinned  bool   `json:"pinned"`
}

// Validate checks note payload requirements.
func (r NoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
	)
}

func (r NoteRequest) note() models.Note {
	return models.Note{ID: r.ID, Title: r.Title, Content: r.Content, Pinned: r.Pinned}
}

// IdeaRequest is the request body for capturing an idea.
type IdeaRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title" example:"Weekend workshop" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category" example:"learning"`
	Pinned      bool   `json:"pinned"`
}

// Validate checks idea payload requirements.
func (r IdeaRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
	)
}

func (r IdeaRequest) idea() models.Idea {
	return models.Idea{ID: r.ID, Title: r.Title, Description: r.Description, Category: r.Category, Pinned: r.Pinned}
}

// LoginRequest is the request body for email/password login.
type LoginRequest struct {
	Email    string `json:"email" example:"ada@example.com" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Validate checks login payload requirements.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// ProviderTokenRequest carries a third-party identity token.
type ProviderTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// Validate checks provider token requirements.
func (r ProviderTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

// AnalyzePlanRequest is the request body for AI plan decomposition.
type AnalyzePlanRequest struct {
	Content   string `json:"content" example:"train for a 10k over six weeks" validate:"required"`
	StartDate string `json:"startDate" example:"2025-03-04"`
}

// Validate checks plan analysis requirements.
func (r AnalyzePlanRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.StartDate, validation.Date("2006-01-02")),
	)
}

// HabitNudgeRequest is the request body for AI habit nudges.
type HabitNudgeRequest struct {
	CurrentTime string `json:"currentTime" example:"17:30"`
}

// Validate checks nudge request requirements.
func (r HabitNudgeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentTime, validation.Match(timeOfDayRx)),
	)
}

// SessionResponse is returned from signup and login.
type SessionResponse struct {
	User  *models.User `json:"user" validate:"required"`
	Token string       `json:"token" validate:"required"`
}

// StreakResponse wraps a habit streak value.
type StreakResponse struct {
	HabitID string `json:"habitId" validate:"required"`
	Streak  int    `json:"streak" example:"10" validate:"required"`
}

// HabitListResponse wraps habit listings.
type HabitListResponse struct {
	Habits []models.Habit `json:"habits" validate:"required"`
}

// EntryListResponse wraps entry listings.
type EntryListResponse struct {
	Entries []models.Entry `json:"entries" validate:"required"`
}

// parseDayParam parses a YYYY-MM-DD path segment.
func parseDayParam(s string) (time.Time, bool) {
	day, err := schedule.ParseDay(s)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
