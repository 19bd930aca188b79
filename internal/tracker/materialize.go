package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/daystack/daystack/internal/apperr"
	"github.com/daystack/daystack/internal/models"
	"github.com/daystack/daystack/internal/schedule"
)

// DefaultScheduledTime is assigned to auto-materialized entries.
const DefaultScheduledTime = "09:00"

// Materialize ensures a tracking entry exists for every habit due on day.
// Habits already represented in existing (same habit, same calendar day)
// are left alone, which makes repeated calls idempotent. Newly created
// entries are persisted one at a time and returned.
//
// A storage conflict on insert means another code path materialized the
// same (habit, day) first; that habit is skipped rather than failed.
func (s *Service) Materialize(ctx context.Context, owner string, habits []models.Habit, day time.Time, existing []models.Entry) ([]models.Entry, error) {
	day = schedule.DayOf(day)
	now := s.now()

	var created []models.Entry
	for _, h := range habits {
		if !schedule.IsDue(h, day) {
			continue
		}
		if hasEntryFor(existing, h.ID, day) {
			continue
		}
		e := models.Entry{
			ID:            uuid.NewString(),
			Kind:          models.EntryKindHabit,
			HabitID:       h.ID,
			Date:          day,
			ScheduledTime: DefaultScheduledTime,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.store.PutEntry(ctx, owner, e); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				continue
			}
			return created, fmt.Errorf("tracker: materialize %s: %w", h.Name, err)
		}
		s.publish("created", "entry", e.ID)
		created = append(created, e)
	}
	return created, nil
}

func hasEntryFor(entries []models.Entry, habitID string, day time.Time) bool {
	for _, e := range entries {
		if e.Kind == models.EntryKindHabit && e.HabitID == habitID && schedule.SameDay(e.Date, day) {
			return true
		}
	}
	return false
}
