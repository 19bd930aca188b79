package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/daystack/daystack/internal/apperr"
	"github.com/daystack/daystack/internal/models"
	"github.com/daystack/daystack/internal/schedule"
)

// Memory is an in-process Store mirroring the same four collections plus
// users. It backs the offline fallback in Gateway and doubles as a test
// store. There is no reconciliation with the primary store; whichever
// store receives a write keeps it (last writer wins per store).
type Memory struct {
	mu      sync.RWMutex
	habits  map[string]ownedHabit
	entries map[string]ownedEntry
	notes   map[string]ownedNote
	ideas   map[string]ownedIdea
	users   map[string]models.User
}

type ownedHabit struct {
	owner string
	rec   models.Habit
}

type ownedEntry struct {
	owner string
	rec   models.Entry
}

type ownedNote struct {
	owner string
	rec   models.Note
}

type ownedIdea struct {
	owner string
	rec   models.Idea
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		habits:  make(map[string]ownedHabit),
		entries: make(map[string]ownedEntry),
		notes:   make(map[string]ownedNote),
		ideas:   make(map[string]ownedIdea),
		users:   make(map[string]models.User),
	}
}

func (m *Memory) Close() error                 { return nil }
func (m *Memory) Ping(_ context.Context) error { return nil }

func (m *Memory) ListHabits(_ context.Context, owner string) ([]models.Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Habit
	for _, h := range m.habits {
		if h.owner == owner {
			out = append(out, h.rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) GetHabit(_ context.Context, owner, id string) (*models.Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.habits[id]
	if !ok || h.owner != owner {
		return nil, apperr.ErrNotFound
	}
	rec := h.rec
	return &rec, nil
}

func (m *Memory) PutHabit(_ context.Context, owner string, h models.Habit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.habits[h.ID]; ok && prev.owner != owner {
		return apperr.ErrNotFound
	}
	m.habits[h.ID] = ownedHabit{owner: owner, rec: h}
	return nil
}

func (m *Memory) DeleteHabit(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.habits[id]
	if !ok || h.owner != owner {
		return apperr.ErrNotFound
	}
	delete(m.habits, id)
	for eid, e := range m.entries {
		if e.owner == owner && e.rec.HabitID == id {
			delete(m.entries, eid)
		}
	}
	return nil
}

func (m *Memory) EntriesByDate(_ context.Context, owner string, day time.Time) ([]models.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Entry
	for _, e := range m.entries {
		if e.owner == owner && schedule.SameDay(e.rec.Date, day) {
			out = append(out, e.rec)
		}
	}
	sortEntries(out)
	return out, nil
}

func (m *Memory) EntriesByRange(_ context.Context, owner string, start, end time.Time) ([]models.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lo, hi := schedule.DayOf(start), schedule.DayOf(end)
	var out []models.Entry
	for _, e := range m.entries {
		d := schedule.DayOf(e.rec.Date)
		if e.owner == owner && !d.Before(lo) && !d.After(hi) {
			out = append(out, e.rec)
		}
	}
	sortEntries(out)
	return out, nil
}

func (m *Memory) EntriesByHabit(_ context.Context, owner, habitID string) ([]models.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Entry
	for _, e := range m.entries {
		if e.owner == owner && e.rec.HabitID == habitID {
			out = append(out, e.rec)
		}
	}
	sortEntries(out)
	return out, nil
}

func (m *Memory) GetEntry(_ context.Context, owner, id string) (*models.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok || e.owner != owner {
		return nil, apperr.ErrNotFound
	}
	rec := e.rec
	return &rec, nil
}

func (m *Memory) PutEntry(_ context.Context, owner string, e models.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.entries[e.ID]; ok {
		if prev.owner != owner {
			return apperr.ErrNotFound
		}
		// Update-in-place keeps kind, habit reference and creation time.
		rec := prev.rec
		rec.Title = e.Title
		rec.ScheduledTime = e.ScheduledTime
		rec.ActualTime = e.ActualTime
		rec.DurationMinutes = e.DurationMinutes
		rec.Completed = e.Completed
		rec.CompletedAt = e.CompletedAt
		rec.Notes = e.Notes
		rec.UpdatedAt = e.UpdatedAt
		m.entries[e.ID] = ownedEntry{owner: prev.owner, rec: rec}
		return nil
	}
	if e.Kind == models.EntryKindHabit {
		for _, other := range m.entries {
			if other.owner == owner && other.rec.Kind == models.EntryKindHabit &&
				other.rec.HabitID == e.HabitID && schedule.SameDay(other.rec.Date, e.Date) {
				return apperr.ErrConflict
			}
		}
	}
	m.entries[e.ID] = ownedEntry{owner: owner, rec: e}
	return nil
}

func (m *Memory) DeleteEntry(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.owner != owner {
		return apperr.ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *Memory) ListNotes(_ context.Context, owner string) ([]models.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Note
	for _, n := range m.notes {
		if n.owner == owner {
			out = append(out, n.rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *Memory) PutNote(_ context.Context, owner string, n models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.notes[n.ID]; ok && prev.owner != owner {
		return apperr.ErrNotFound
	}
	m.notes[n.ID] = ownedNote{owner: owner, rec: n}
	return nil
}

func (m *Memory) DeleteNote(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.owner != owner {
		return apperr.ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *Memory) ListIdeas(_ context.Context, owner string) ([]models.Idea, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Idea
	for _, i := range m.ideas {
		if i.owner == owner {
			out = append(out, i.rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *Memory) PutIdea(_ context.Context, owner string, i models.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.ideas[i.ID]; ok && prev.owner != owner {
		return apperr.ErrNotFound
	}
	m.ideas[i.ID] = ownedIdea{owner: owner, rec: i}
	return nil
}

func (m *Memory) DeleteIdea(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.ideas[id]
	if !ok || i.owner != owner {
		return apperr.ErrNotFound
	}
	delete(m.ideas, id)
	return nil
}

func (m *Memory) CreateUser(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperr.ErrAlreadyExists
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			rec := u
			return &rec, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *Memory) UserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	rec := u
	return &rec, nil
}

func (m *Memory) CountUsers(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

func (m *Memory) ClaimUnowned(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, h := range m.habits {
		if h.owner == "" {
			h.owner = owner
			m.habits[id] = h
		}
	}
	for id, e := range m.entries {
		if e.owner == "" {
			e.owner = owner
			m.entries[id] = e
		}
	}
	for id, n := range m.notes {
		if n.owner == "" {
			n.owner = owner
			m.notes[id] = n
		}
	}
	for id, i := range m.ideas {
		if i.owner == "" {
			i.owner = owner
			m.ideas[id] = i
		}
	}
	return nil
}

func sortEntries(entries []models.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		di, dj := schedule.DayOf(entries[i].Date), schedule.DayOf(entries[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return entries[i].ScheduledTime < entries[j].ScheduledTime
	})
}
