package store

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/daystack/daystack/internal/models"
)

// Gateway routes storage calls to a primary store while it is reachable and
// to a fallback store otherwise.
//
// Connectivity is held as explicit state: it is probed once at construction
// and changes only through Refresh. A primary that goes away mid-session is
// therefore not detected until a caller refreshes — there is no background
// re-probing and no reconciliation between the two stores once connectivity
// returns.
type Gateway struct {
	primary  Store
	fallback Store
	online   atomic.Bool
}

// NewGateway probes primary once and returns a gateway routing to it when
// reachable, to fallback otherwise.
func NewGateway(ctx context.Context, primary, fallback Store) *Gateway {
	g := &Gateway{primary: primary, fallback: fallback}
	g.Refresh(ctx)
	return g
}

// Online reports the cached connectivity state.
func (g *Gateway) Online() bool {
	return g.online.Load()
}

// Refresh re-probes the primary store and updates the connectivity state.
// It returns the new state.
func (g *Gateway) Refresh(ctx context.Context) bool {
	up := g.primary.Ping(ctx) == nil
	if up != g.online.Load() {
		slog.Info("storage connectivity changed", slog.Bool("primary_online", up))
	}
	g.online.Store(up)
	return up
}

func (g *Gateway) active() Store {
	if g.online.Load() {
		return g.primary
	}
	return g.fallback
}

// Ping probes the currently active store.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.active().Ping(ctx)
}

// Close closes both stores; the primary's error wins.
func (g *Gateway) Close() error {
	ferr := g.fallback.Close()
	if err := g.primary.Close(); err != nil {
		return err
	}
	return ferr
}

func (g *Gateway) ListHabits(ctx context.Context, owner string) ([]models.Habit, error) {
	return g.active().ListHabits(ctx, owner)
}

func (g *Gateway) GetHabit(ctx context.Context, owner, id string) (*models.Habit, error) {
	return g.active().GetHabit(ctx, owner, id)
}

func (g *Gateway) PutHabit(ctx context.Context, owner string, h models.Habit) error {
	return g.active().PutHabit(ctx, owner, h)
}

func (g *Gateway) DeleteHabit(ctx context.Context, owner, id string) error {
	return g.active().DeleteHabit(ctx, owner, id)
}

func (g *Gateway) EntriesByDate(ctx context.Context, owner string, day time.Time) ([]models.Entry, error) {
	return g.active().EntriesByDate(ctx, owner, day)
}

func (g *Gateway) EntriesByRange(ctx context.Context, owner string, start, end time.Time) ([]models.Entry, error) {
	return g.active().EntriesByRange(ctx, owner, start, end)
}

func (g *Gateway) EntriesByHabit(ctx context.Context, owner, habitID string) ([]models.Entry, error) {
	return g.active().EntriesByHabit(ctx, owner, habitID)
}

func (g *Gateway) GetEntry(ctx context.Context, owner, id string) (*models.Entry, error) {
	return g.active().GetEntry(ctx, owner, id)
}

func (g *Gateway) PutEntry(ctx context.Context, owner string, e models.Entry) error {
	return g.active().PutEntry(ctx, owner, e)
}

func (g *Gateway) DeleteEntry(ctx context.Context, owner, id string) error {
	return g.active().DeleteEntry(ctx, owner, id)
}

func (g *Gateway) ListNotes(ctx context.Context, owner string) ([]models.Note, error) {
	return g.active().ListNotes(ctx, owner)
}

func (g *Gateway) PutNote(ctx context.Context, owner string, n models.Note) error {
	return g.active().PutNote(ctx, owner, n)
}

func (g *Gateway) DeleteNote(ctx context.Context, owner, id string) error {
	return g.active().DeleteNote(ctx, owner, id)
}

func (g *Gateway) ListIdeas(ctx context.Context, owner string) ([]models.Idea, error) {
	return g.active().ListIdeas(ctx, owner)
}

func (g *Gateway) PutIdea(ctx context.Context, owner string, i models.Idea) error {
	return g.active().PutIdea(ctx, owner, i)
}

func (g *Gateway) DeleteIdea(ctx context.Context, owner, id string) error {
	return g.active().DeleteIdea(ctx, owner, id)
}

func (g *Gateway) CreateUser(ctx context.Context, u models.User) error {
	return g.active().CreateUser(ctx, u)
}

func (g *Gateway) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return g.active().UserByEmail(ctx, email)
}

func (g *Gateway) UserByID(ctx context.Context, id string) (*models.User, error) {
	return g.active().UserByID(ctx, id)
}

func (g *Gateway) CountUsers(ctx context.Context) (int, error) {
	return g.active().CountUsers(ctx)
}

func (g *Gateway) ClaimUnowned(ctx context.Context, owner string) error {
	return g.active().ClaimUnowned(ctx, owner)
}
