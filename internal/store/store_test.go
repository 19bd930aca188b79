package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/daystack/daystack/internal/apperr"
	"github.com/daystack/daystack/internal/models"
)

func testSQLite(t *testing.T) *SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "daystack-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	s, err := Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// stores under test share one behavior suite.
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, testSQLite(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
}

func TestHabitCRUDAndOrdering(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		older := models.Habit{ID: "h1", Name: "Read", Frequency: models.FrequencyDaily, CreatedAt: day("2024-01-01")}
		newer := models.Habit{ID: "h2", Name: "Run", Frequency: models.FrequencyWeekdays, CreatedAt: day("2024-02-01")}
		if err := s.PutHabit(ctx, "", older); err != nil {
			t.Fatalf("PutHabit: %v", err)
		}
		if err := s.PutHabit(ctx, "", newer); err != nil {
			t.Fatalf("PutHabit: %v", err)
		}

		habits, err := s.ListHabits(ctx, "")
		if err != nil {
			t.Fatalf("ListHabits: %v", err)
		}
		if len(habits) != 2 || habits[0].ID != "h2" {
			t.Fatalf("habits = %+v, want newest first", habits)
		}

		if _, err := s.GetHabit(ctx, "", "nope"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("GetHabit missing = %v, want ErrNotFound", err)
		}
		if _, err := s.GetHabit(ctx, "someone-else", "h1"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("GetHabit wrong owner = %v, want ErrNotFound", err)
		}
	})
}

func TestCustomDaysRoundTrip(t *testing.T) {
	s := testSQLite(t)
	ctx := context.Background()
	h := models.Habit{
		ID:         "h1",
		Name:       "Gym",
		Frequency:  models.FrequencyCustom,
		CustomDays: []int{1, 3, 5},
		CreatedAt:  day("2024-01-01"),
	}
	if err := s.PutHabit(ctx, "", h); err != nil {
		t.Fatalf("PutHabit: %v", err)
	}
	got, err := s.GetHabit(ctx, "", "h1")
	if err != nil {
		t.Fatalf("GetHabit: %v", err)
	}
	if len(got.CustomDays) != 3 || got.CustomDays[1] != 3 {
		t.Errorf("CustomDays = %v, want [1 3 5]", got.CustomDays)
	}
}

func TestEntryUpsertUpdatesMutableFields(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		e := models.Entry{
			ID: "e1", Kind: models.EntryKindHabit, HabitID: "h1",
			Date: day("2024-03-04"), ScheduledTime: "09:00",
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}
		if err := s.PutEntry(ctx, "", e); err != nil {
			t.Fatalf("PutEntry: %v", err)
		}

		done := time.Now()
		e.Completed = true
		e.CompletedAt = &done
		e.ActualTime = "10:30"
		e.Notes = "felt good"
		if err := s.PutEntry(ctx, "", e); err != nil {
			t.Fatalf("PutEntry resubmit: %v", err)
		}

		got, err := s.EntriesByDate(ctx, "", day("2024-03-04"))
		if err != nil {
			t.Fatalf("EntriesByDate: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("entries = %d, want 1", len(got))
		}
		if !got[0].Completed || got[0].ActualTime != "10:30" || got[0].Notes != "felt good" {
			t.Errorf("entry after upsert = %+v", got[0])
		}
		if got[0].CompletedAt == nil {
			t.Error("completedAt not persisted")
		}

		byID, err := s.GetEntry(ctx, "", "e1")
		if err != nil || byID.ActualTime != "10:30" {
			t.Errorf("GetEntry = %+v, %v", byID, err)
		}
		if _, err := s.GetEntry(ctx, "", "missing"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("GetEntry missing = %v, want ErrNotFound", err)
		}
	})
}

func TestEntryDuplicateHabitDayRejected(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		base := models.Entry{
			Kind: models.EntryKindHabit, HabitID: "h1",
			Date: day("2024-03-04"), ScheduledTime: "09:00",
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}
		first := base
		first.ID = "e1"
		if err := s.PutEntry(ctx, "", first); err != nil {
			t.Fatalf("first PutEntry: %v", err)
		}
		second := base
		second.ID = "e2"
		if err := s.PutEntry(ctx, "", second); !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("duplicate (habit, day) insert = %v, want ErrConflict", err)
		}

		// A task entry on the same day is fine, as is the same habit on
		// another day.
		task := models.Entry{
			ID: "t1", Kind: models.EntryKindTask, Title: "Book flights",
			Date: day("2024-03-04"), ScheduledTime: "14:00",
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}
		if err := s.PutEntry(ctx, "", task); err != nil {
			t.Errorf("task entry same day: %v", err)
		}
		next := base
		next.ID = "e3"
		next.Date = day("2024-03-05")
		if err := s.PutEntry(ctx, "", next); err != nil {
			t.Errorf("same habit next day: %v", err)
		}
	})
}

func TestDeleteHabitCascades(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		h := models.Habit{ID: "h1", Name: "Read", Frequency: models.FrequencyDaily, CreatedAt: day("2024-01-01")}
		if err := s.PutHabit(ctx, "", h); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 10; i++ {
			e := models.Entry{
				ID: "e" + string(rune('0'+i)), Kind: models.EntryKindHabit, HabitID: "h1",
				Date: day("2024-03-04").AddDate(0, 0, i), ScheduledTime: "09:00",
				CreatedAt: time.Now(), UpdatedAt: time.Now(),
			}
			if err := s.PutEntry(ctx, "", e); err != nil {
				t.Fatalf("PutEntry %d: %v", i, err)
			}
		}

		if err := s.DeleteHabit(ctx, "", "h1"); err != nil {
			t.Fatalf("DeleteHabit: %v", err)
		}
		left, err := s.EntriesByHabit(ctx, "", "h1")
		if err != nil {
			t.Fatalf("EntriesByHabit: %v", err)
		}
		if len(left) != 0 {
			t.Errorf("entries after cascade = %d, want 0", len(left))
		}
		if err := s.DeleteHabit(ctx, "", "h1"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("second delete = %v, want ErrNotFound", err)
		}
	})
}

func TestEntriesRangeOrdering(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		put := func(id, date, at string) {
			t.Helper()
			e := models.Entry{
				ID: id, Kind: models.EntryKindTask, Title: id,
				Date: day(date), ScheduledTime: at,
				CreatedAt: time.Now(), UpdatedAt: time.Now(),
			}
			if err := s.PutEntry(ctx, "", e); err != nil {
				t.Fatalf("PutEntry %s: %v", id, err)
			}
		}
		put("b", "2024-03-05", "08:00")
		put("c", "2024-03-04", "17:00")
		put("a", "2024-03-04", "07:00")
		put("out", "2024-03-10", "07:00")

		got, err := s.EntriesByRange(ctx, "", day("2024-03-04"), day("2024-03-06"))
		if err != nil {
			t.Fatalf("EntriesByRange: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("range entries = %d, want 3", len(got))
		}
		if got[0].ID != "a" || got[1].ID != "c" || got[2].ID != "b" {
			t.Errorf("order = [%s %s %s], want [a c b]", got[0].ID, got[1].ID, got[2].ID)
		}
	})
}

func TestPutScopedToOwner(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		h := models.Habit{ID: "h1", Name: "Read", Frequency: models.FrequencyDaily, CreatedAt: day("2024-01-01")}
		if err := s.PutHabit(ctx, "alice", h); err != nil {
			t.Fatal(err)
		}
		e := models.Entry{
			ID: "e1", Kind: models.EntryKindHabit, HabitID: "h1",
			Date: day("2024-03-04"), ScheduledTime: "09:00", Notes: "morning chapter",
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}
		if err := s.PutEntry(ctx, "alice", e); err != nil {
			t.Fatal(err)
		}
		n := models.Note{ID: "n1", Title: "groceries", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if err := s.PutNote(ctx, "alice", n); err != nil {
			t.Fatal(err)
		}
		idea := models.Idea{ID: "i1", Title: "garden sensor", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if err := s.PutIdea(ctx, "alice", idea); err != nil {
			t.Fatal(err)
		}

		// Replaying another owner's ids must neither update their rows nor
		// transfer them.
		h.Name = "taken over"
		if err := s.PutHabit(ctx, "mallory", h); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("cross-owner PutHabit = %v, want ErrNotFound", err)
		}
		e.Notes = "scribbled over"
		if err := s.PutEntry(ctx, "mallory", e); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("cross-owner PutEntry = %v, want ErrNotFound", err)
		}
		n.Title = "scribbled over"
		if err := s.PutNote(ctx, "mallory", n); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("cross-owner PutNote = %v, want ErrNotFound", err)
		}
		idea.Title = "scribbled over"
		if err := s.PutIdea(ctx, "mallory", idea); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("cross-owner PutIdea = %v, want ErrNotFound", err)
		}

		got, err := s.GetHabit(ctx, "alice", "h1")
		if err != nil || got.Name != "Read" {
			t.Errorf("habit after cross-owner put = %+v, %v", got, err)
		}
		entry, err := s.GetEntry(ctx, "alice", "e1")
		if err != nil || entry.Notes != "morning chapter" {
			t.Errorf("entry after cross-owner put = %+v, %v", entry, err)
		}
		notes, err := s.ListNotes(ctx, "alice")
		if err != nil || len(notes) != 1 || notes[0].Title != "groceries" {
			t.Errorf("notes after cross-owner put = %+v, %v", notes, err)
		}
		ideas, err := s.ListIdeas(ctx, "alice")
		if err != nil || len(ideas) != 1 || ideas[0].Title != "garden sensor" {
			t.Errorf("ideas after cross-owner put = %+v, %v", ideas, err)
		}
	})
}

func TestUsersAndClaimUnowned(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		h := models.Habit{ID: "h1", Name: "Read", Frequency: models.FrequencyDaily, CreatedAt: day("2024-01-01")}
		if err := s.PutHabit(ctx, "", h); err != nil {
			t.Fatal(err)
		}
		n := models.Note{ID: "n1", Title: "groceries", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if err := s.PutNote(ctx, "", n); err != nil {
			t.Fatal(err)
		}

		u := models.User{ID: "u1", Email: "a@b.c", Provider: models.ProviderEmail, CreatedAt: time.Now()}
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		dup := models.User{ID: "u2", Email: "a@b.c", Provider: models.ProviderEmail, CreatedAt: time.Now()}
		if err := s.CreateUser(ctx, dup); !errors.Is(err, apperr.ErrAlreadyExists) {
			t.Errorf("duplicate email = %v, want ErrAlreadyExists", err)
		}

		if err := s.ClaimUnowned(ctx, "u1"); err != nil {
			t.Fatalf("ClaimUnowned: %v", err)
		}
		mine, err := s.ListHabits(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if len(mine) != 1 {
			t.Errorf("claimed habits = %d, want 1", len(mine))
		}
		orphans, err := s.ListHabits(ctx, "")
		if err != nil {
			t.Fatal(err)
		}
		if len(orphans) != 0 {
			t.Errorf("unowned habits after claim = %d, want 0", len(orphans))
		}
		notes, err := s.ListNotes(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if len(notes) != 1 {
			t.Errorf("claimed notes = %d, want 1", len(notes))
		}
	})
}

// flakyStore wraps Memory with a switchable Ping failure.
type flakyStore struct {
	*Memory
	down bool
}

func (f *flakyStore) Ping(context.Context) error {
	if f.down {
		return errors.New("connection refused")
	}
	return nil
}

func TestGatewayFailoverAndRefresh(t *testing.T) {
	ctx := context.Background()
	primary := &flakyStore{Memory: NewMemory()}
	fallback := NewMemory()

	g := NewGateway(ctx, primary, fallback)
	if !g.Online() {
		t.Fatal("gateway offline with healthy primary")
	}

	h := models.Habit{ID: "h1", Name: "Read", Frequency: models.FrequencyDaily, CreatedAt: day("2024-01-01")}
	if err := g.PutHabit(ctx, "", h); err != nil {
		t.Fatal(err)
	}

	// Connectivity is cached: the primary going down is invisible until an
	// explicit refresh.
	primary.down = true
	habits, err := g.ListHabits(ctx, "")
	if err != nil || len(habits) != 1 {
		t.Fatalf("pre-refresh read = %v (%d habits), want primary hit", err, len(habits))
	}

	if g.Refresh(ctx) {
		t.Fatal("Refresh reported online with failing primary")
	}
	habits, err = g.ListHabits(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 0 {
		t.Errorf("fallback habits = %d, want 0 (no reconciliation)", len(habits))
	}

	// Writes land in the fallback while offline and stay there after
	// connectivity returns.
	n := models.Note{ID: "n1", Title: "offline note", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := g.PutNote(ctx, "", n); err != nil {
		t.Fatal(err)
	}
	primary.down = false
	if !g.Refresh(ctx) {
		t.Fatal("Refresh reported offline with healthy primary")
	}
	notes, err := g.ListNotes(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 0 {
		t.Errorf("primary notes = %d, want 0 (offline write not merged back)", len(notes))
	}
}
