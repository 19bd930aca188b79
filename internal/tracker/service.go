// Package tracker implements the habit tracking core: recurrence-driven
// entry materialization, streak computation, and CRUD orchestration over
// the storage gateway.
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
	"github.com/daystack/daystack/internal/store"
)

// Notifier receives change notifications for connected clients. A nil
// Notifier disables publishing.
type Notifier interface {
	PublishChange(action, collection, id string)
}

// Service coordinates storage, materialization and streaks.
type Service struct {
	store  store.Store
	notify Notifier
	now    func() time.Time
}

// NewService creates a tracker service. notify may be nil.
func NewService(st store.Store, notify Notifier) *Service {
	return &Service{store: st, notify: notify, now: time.Now}
}

func (s *Service) publish(action, collection, id string) {
	if s.notify != nil {
		s.notify.PublishChange(action, collection, id)
	}
}

// Habits lists the owner's habits, newest first.
func (s *Service) Habits(ctx context.Context, owner string) ([]models.Habit, error) {
	return s.store.ListHabits(ctx, owner)
}

// CreateHabit persists a habit and pre-populates entries for the coming
// week (day offsets 0..6 from today).
func (s *Service) CreateHabit(ctx context.Context, owner string, h models.Habit) (*models.Habit, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = s.now()
	}
	if err := s.store.PutHabit(ctx, owner, h); err != nil {
		return nil, err
	}
	s.publish("created", "habit", h.ID)

	today := schedule.DayOf(s.now())
	for offset := 0; offset <= 6; offset++ {
		day := today.AddDate(0, 0, offset)
		existing, err := s.store.EntriesByDate(ctx, owner, day)
		if err != nil {
			return nil, fmt.Errorf("tracker: prefill %s: %w", schedule.FormatDay(day), err)
		}
		if _, err := s.Materialize(ctx, owner, []models.Habit{h}, day, existing); err != nil {
			return nil, fmt.Errorf("tracker: prefill %s: %w", schedule.FormatDay(day), err)
		}
	}
	return &h, nil
}

// DeleteHabit removes the habit and cascades deletion of its entries.
func (s *Service) DeleteHabit(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteHabit(ctx, owner, id); err != nil {
		return err
	}
	s.publish("deleted", "habit", id)
	return nil
}

// EntriesForDate ensures due habits are materialized for the requested day,
// then returns all of the day's entries ordered by scheduled time.
func (s *Service) EntriesForDate(ctx context.Context, owner string, day time.Time) ([]models.Entry, error) {
	habits, err := s.store.ListHabits(ctx, owner)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.EntriesByDate(ctx, owner, day)
	if err != nil {
		return nil, err
	}
	created, err := s.Materialize(ctx, owner, habits, day, existing)
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return existing, nil
	}
	return s.store.EntriesByDate(ctx, owner, day)
}

// EntriesForRange returns entries within [start, end], materializing today's
// due habits first when today falls inside the range.
func (s *Service) EntriesForRange(ctx context.Context, owner string, start, end time.Time) ([]models.Entry, error) {
	today := schedule.DayOf(s.now())
	lo, hi := schedule.DayOf(start), schedule.DayOf(end)
	if !today.Before(lo) && !today.After(hi) {
		habits, err := s.store.ListHabits(ctx, owner)
		if err != nil {
			return nil, err
		}
		existing, err := s.store.EntriesByDate(ctx, owner, today)
		if err != nil {
			return nil, err
		}
		if _, err := s.Materialize(ctx, owner, habits, today, existing); err != nil {
			return nil, err
		}
	}
	return s.store.EntriesByRange(ctx, owner, lo, hi)
}

// SaveEntry creates or updates an entry (completion toggle, reschedule,
// manual creation, plan-task import). The entry kind is derived from the
// habit reference when unset. On update, the stored date, kind and habit
// reference win over the submitted ones, so the returned entry reflects
// what is actually persisted.
func (s *Service) SaveEntry(ctx context.Context, owner string, e models.Entry) (*models.Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	} else if cur, err := s.store.GetEntry(ctx, owner, e.ID); err == nil {
		e.Kind = cur.Kind
		e.HabitID = cur.HabitID
		e.Date = cur.Date
		e.CreatedAt = cur.CreatedAt
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if e.Kind == "" {
		if e.HabitID != "" {
			e.Kind = models.EntryKindHabit
		} else {
			e.Kind = models.EntryKindTask
		}
	}
	e.Date = schedule.DayOf(e.Date)
	if e.ScheduledTime == "" {
		e.ScheduledTime = DefaultScheduledTime
	}
	now := s.now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	if e.Completed && e.CompletedAt == nil {
		e.CompletedAt = &now
	}
	if !e.Completed {
		e.CompletedAt = nil
	}
	if err := s.store.PutEntry(ctx, owner, e); err != nil {
		return nil, err
	}
	s.publish("updated", "entry", e.ID)
	return &e, nil
}

// DeleteEntry removes one entry; the owning habit is unaffected.
func (s *Service) DeleteEntry(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteEntry(ctx, owner, id); err != nil {
		return err
	}
	s.publish("deleted", "entry", id)
	return nil
}

// StreakFor computes the habit's current consecutive-completion streak.
func (s *Service) StreakFor(ctx context.Context, owner, habitID string) (int, error) {
	h, err := s.store.GetHabit(ctx, owner, habitID)
	if err != nil {
		return 0, err
	}
	entries, err := s.store.EntriesByHabit(ctx, owner, habitID)
	if err != nil {
		return 0, err
	}
	return Streak(*h, entries, s.now()), nil
}
