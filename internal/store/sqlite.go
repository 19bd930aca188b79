package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/daystack/daystack/internal/apperr"
	"github.com/daystack/daystack/internal/models"
	"github.com/daystack/daystack/internal/schedule"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL DEFAULT '',
	provider      TEXT NOT NULL DEFAULT 'email',
	password_hash TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS habits (
	id                      TEXT PRIMARY KEY,
	owner                   TEXT NOT NULL DEFAULT '',
	name                    TEXT NOT NULL,
	color                   TEXT NOT NULL DEFAULT '',
	frequency               TEXT NOT NULL,
	custom_days             TEXT NOT NULL DEFAULT '[]',
	target_duration_minutes INTEGER NOT NULL DEFAULT 0,
	created_at              DATETIME NOT NULL
);

-- habit_id is a weak reference on purpose: task-kind entries have no habit
-- row, and entries must outlive habit lookup failures.
CREATE TABLE IF NOT EXISTS entries (
	id               TEXT PRIMARY KEY,
	owner            TEXT NOT NULL DEFAULT '',
	kind             TEXT NOT NULL DEFAULT 'habit',
	habit_id         TEXT NOT NULL DEFAULT '',
	title            TEXT NOT NULL DEFAULT '',
	date             TEXT NOT NULL,
	scheduled_time   TEXT NOT NULL DEFAULT '09:00',
	actual_time      TEXT NOT NULL DEFAULT '',
	duration_minutes INTEGER NOT NULL DEFAULT 0,
	completed        INTEGER NOT NULL DEFAULT 0,
	completed_at     DATETIME,
	notes            TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL,
	updated_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_owner_date ON entries(owner, date);
CREATE INDEX IF NOT EXISTS idx_entries_habit ON entries(habit_id);

-- At most one materialized occurrence per habit per calendar day.
CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_habit_day
	ON entries(owner, habit_id, date) WHERE kind = 'habit';

CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	owner      TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	pinned     INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS ideas (
	id          TEXT PRIMARY KEY,
	owner       TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	pinned      INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);
`

// SQLite is the primary Store implementation.
type SQLite struct {
	conn *sql.DB
}

// Verify implementations satisfy Store at compile time.
var (
	_ Store = (*SQLite)(nil)
	_ Store = (*Memory)(nil)
	_ Store = (*Gateway)(nil)
)

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Ping verifies the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// ---- habits ----

func (s *SQLite) ListHabits(ctx context.Context, owner string) ([]models.Habit, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, name, color, frequency, custom_days, target_duration_minutes, created_at
		FROM habits WHERE owner = ? ORDER BY created_at DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("store: list habits: %w", err)
	}
	defer rows.Close()

	var out []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *SQLite) GetHabit(ctx context.Context, owner, id string) (*models.Habit, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, name, color, frequency, custom_days, target_duration_minutes, created_at
		FROM habits WHERE owner = ? AND id = ?
	`, owner, id)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *SQLite) PutHabit(ctx context.Context, owner string, h models.Habit) error {
	days, _ := json.Marshal(h.CustomDays)
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO habits (id, owner, name, color, frequency, custom_days, target_duration_minutes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name                    = excluded.name,
			color                   = excluded.color,
			frequency               = excluded.frequency,
			custom_days             = excluded.custom_days,
			target_duration_minutes = excluded.target_duration_minutes
		WHERE owner = excluded.owner
	`, h.ID, owner, h.Name, h.Color, string(h.Frequency), string(days), h.TargetDurationMinutes, h.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: put habit: %w", err)
	}
	// Zero rows means the id exists under a different owner.
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteHabit removes the habit and all of its entries in one transaction.
func (s *SQLite) DeleteHabit(ctx context.Context, owner, id string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.ExecContext(ctx, `DELETE FROM habits WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("store: delete habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE owner = ? AND habit_id = ?`, owner, id); err != nil {
		return fmt.Errorf("store: delete habit entries: %w", err)
	}
	return tx.Commit()
}

// ---- entries ----

const entryColumns = `id, kind, habit_id, title, date, scheduled_time, actual_time,
	duration_minutes, completed, completed_at, notes, created_at, updated_at`

func (s *SQLite) EntriesByDate(ctx context.Context, owner string, day time.Time) ([]models.Entry, error) {
	return s.queryEntries(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE owner = ? AND date = ?
		ORDER BY scheduled_time ASC
	`, owner, schedule.FormatDay(day))
}

func (s *SQLite) EntriesByRange(ctx context.Context, owner string, start, end time.Time) ([]models.Entry, error) {
	return s.queryEntries(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE owner = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, scheduled_time ASC
	`, owner, schedule.FormatDay(start), schedule.FormatDay(end))
}

func (s *SQLite) EntriesByHabit(ctx context.Context, owner, habitID string) ([]models.Entry, error) {
	return s.queryEntries(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE owner = ? AND habit_id = ?
		ORDER BY date ASC, scheduled_time ASC
	`, owner, habitID)
}

func (s *SQLite) queryEntries(ctx context.Context, query string, args ...any) ([]models.Entry, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query entries: %w", err)
	}
	defer rows.Close()

	var out []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLite) GetEntry(ctx context.Context, owner, id string) (*models.Entry, error) {
	e, err := scanEntry(s.conn.QueryRowContext(ctx, `
		SELECT `+entryColumns+` FROM entries WHERE owner = ? AND id = ?
	`, owner, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (s *SQLite) PutEntry(ctx context.Context, owner string, e models.Entry) error {
	var completedAt sql.NullTime
	if e.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *e.CompletedAt, Valid: true}
	}
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO entries (id, owner, kind, habit_id, title, date, scheduled_time, actual_time,
			duration_minutes, completed, completed_at, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title            = excluded.title,
			scheduled_time   = excluded.scheduled_time,
			actual_time      = excluded.actual_time,
			duration_minutes = excluded.duration_minutes,
			completed        = excluded.completed,
			completed_at     = excluded.completed_at,
			notes            = excluded.notes,
			updated_at       = excluded.updated_at
		WHERE owner = excluded.owner
	`, e.ID, owner, string(e.Kind), e.HabitID, e.Title, schedule.FormatDay(e.Date),
		e.ScheduledTime, e.ActualTime, e.DurationMinutes, e.Completed, completedAt,
		e.Notes, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("store: put entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *SQLite) DeleteEntry(ctx context.Context, owner, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM entries WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("store: delete entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ---- notes ----

func (s *SQLite) ListNotes(ctx context.Context, owner string) ([]models.Note, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, title, content, pinned, created_at, updated_at
		FROM notes WHERE owner = ? ORDER BY updated_at DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Pinned, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLite) PutNote(ctx context.Context, owner string, n models.Note) error {
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO notes (id, owner, title, content, pinned, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			content    = excluded.content,
			pinned     = excluded.pinned,
			updated_at = excluded.updated_at
		WHERE owner = excluded.owner
	`, n.ID, owner, n.Title, n.Content, n.Pinned, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: put note: %w", err)
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *SQLite) DeleteNote(ctx context.Context, owner, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM notes WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ---- ideas ----

func (s *SQLite) ListIdeas(ctx context.Context, owner string) ([]models.Idea, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, title, description, category, pinned, created_at, updated_at
		FROM ideas WHERE owner = ? ORDER BY updated_at DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("store: list ideas: %w", err)
	}
	defer rows.Close()

	var out []models.Idea
	for rows.Next() {
		var i models.Idea
		if err := rows.Scan(&i.ID, &i.Title, &i.Description, &i.Category, &i.Pinned, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan idea: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *SQLite) PutIdea(ctx context.Context, owner string, i models.Idea) error {
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO ideas (id, owner, title, description, category, pinned, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title       = excluded.title,
			description = excluded.description,
			category    = excluded.category,
			pinned      = excluded.pinned,
			updated_at  = excluded.updated_at
		WHERE owner = excluded.owner
	`, i.ID, owner, i.Title, i.Description, i.Category, i.Pinned, i.CreatedAt, i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: put idea: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *SQLite) DeleteIdea(ctx context.Context, owner, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM ideas WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("store: delete idea: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ---- users ----

func (s *SQLite) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO users (id, email, name, provider, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.Name, string(u.Provider), u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("store: create user: %w", err)
	}
	return nil
}

func (s *SQLite) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.conn.QueryRowContext(ctx, `
		SELECT id, email, name, provider, password_hash, created_at FROM users WHERE email = ?
	`, email))
}

func (s *SQLite) UserByID(ctx context.Context, id string) (*models.User, error) {
	return s.scanUser(s.conn.QueryRowContext(ctx, `
		SELECT id, email, name, provider, password_hash, created_at FROM users WHERE id = ?
	`, id))
}

func (s *SQLite) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count users: %w", err)
	}
	return n, nil
}

// ClaimUnowned assigns every unowned row to owner within one transaction.
func (s *SQLite) ClaimUnowned(ctx context.Context, owner string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"habits", "entries", "notes", "ideas"} {
		if _, err := tx.ExecContext(ctx, `UPDATE `+table+` SET owner = ? WHERE owner = ''`, owner); err != nil {
			return fmt.Errorf("store: claim %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// ---- scan helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(r rowScanner) (models.Habit, error) {
	var (
		h    models.Habit
		freq string
		days string
	)
	if err := r.Scan(&h.ID, &h.Name, &h.Color, &freq, &days, &h.TargetDurationMinutes, &h.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return h, err
		}
		return h, fmt.Errorf("store: scan habit: %w", err)
	}
	h.Frequency = models.Frequency(freq)
	if err := json.Unmarshal([]byte(days), &h.CustomDays); err != nil {
		return h, fmt.Errorf("store: decode custom days: %w", err)
	}
	return h, nil
}

func scanEntry(r rowScanner) (models.Entry, error) {
	var (
		e           models.Entry
		kind        string
		day         string
		completedAt sql.NullTime
	)
	err := r.Scan(&e.ID, &kind, &e.HabitID, &e.Title, &day, &e.ScheduledTime, &e.ActualTime,
		&e.DurationMinutes, &e.Completed, &completedAt, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return e, fmt.Errorf("store: scan entry: %w", err)
	}
	e.Kind = models.EntryKind(kind)
	if e.Date, err = schedule.ParseDay(day); err != nil {
		return e, fmt.Errorf("store: decode entry date: %w", err)
	}
	if completedAt.Valid {
		t := completedAt.Time
		e.CompletedAt = &t
	}
	return e, nil
}

func (s *SQLite) scanUser(row *sql.Row) (*models.User, error) {
	var (
		u        models.User
		provider string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &provider, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan user: %w", err)
	}
	u.Provider = models.AuthProvider(provider)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	return false
}
