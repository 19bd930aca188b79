// Package store provides persistence for habits, entries, notes, ideas and
// users. The primary implementation is SQLite; an in-memory implementation
// mirrors the same collections and serves as the fallback store and as a
// test double. Gateway combines the two behind an explicit connectivity
// state.
package store

import (
	"context"
	"time"

	"github.com/daystack/daystack/internal/models"
)

// Store is the storage gateway consumed by the service layers.
//
// Every record is scoped to an owner (user id); the empty owner marks rows
// created before any user registered, which the first registered user
// claims via ClaimUnowned. Put operations never cross that scope: an id
// that already exists under a different owner is reported as
// apperr.ErrNotFound, leaving the other owner's row untouched.
type Store interface {
	// Habits, ordered by creation time descending.
	ListHabits(ctx context.Context, owner string) ([]models.Habit, error)
	GetHabit(ctx context.Context, owner, id string) (*models.Habit, error)
	PutHabit(ctx context.Context, owner string, h models.Habit) error
	// DeleteHabit cascades deletion of the habit's entries.
	DeleteHabit(ctx context.Context, owner, id string) error

	// Entries. Date queries compare calendar days; results are ordered by
	// date then scheduled time ascending.
	EntriesByDate(ctx context.Context, owner string, day time.Time) ([]models.Entry, error)
	EntriesByRange(ctx context.Context, owner string, start, end time.Time) ([]models.Entry, error)
	EntriesByHabit(ctx context.Context, owner, habitID string) ([]models.Entry, error)
	GetEntry(ctx context.Context, owner, id string) (*models.Entry, error)
	// PutEntry creates the entry or, when the id already exists, updates the
	// mutable fields in place (times, completion, notes, title); date, kind
	// and the habit reference never change after creation. A second
	// habit-kind entry for the same (habit, day) is rejected with
	// apperr.ErrConflict.
	PutEntry(ctx context.Context, owner string, e models.Entry) error
	DeleteEntry(ctx context.Context, owner, id string) error

	// Notes and ideas, ordered by last update descending.
	ListNotes(ctx context.Context, owner string) ([]models.Note, error)
	PutNote(ctx context.Context, owner string, n models.Note) error
	DeleteNote(ctx context.Context, owner, id string) error
	ListIdeas(ctx context.Context, owner string) ([]models.Idea, error)
	PutIdea(ctx context.Context, owner string, i models.Idea) error
	DeleteIdea(ctx context.Context, owner, id string) error

	// Users.
	CreateUser(ctx context.Context, u models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	CountUsers(ctx context.Context) (int, error)
	// ClaimUnowned transfers all rows with an empty owner to the given user.
	ClaimUnowned(ctx context.Context, owner string) error

	Ping(ctx context.Context) error
	Close() error
}
