package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daystack/daystack/internal/store"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced; verify
// resolves tokens to user ids. sseHandler, if non-nil, is mounted at
// GET /events inside the auth group.
func NewRouter(h *Handler, ah *AuthHandler, aih *AIHandler, gw *store.Gateway, authEnabled bool, verify TokenVerifier, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()

	// Session establishment and readiness stay unauthenticated.
	r.Post("/auth/signup", ah.Signup)
	r.Post("/auth/login", ah.Login)
	r.Post("/auth/google", ah.Google)
	r.Post("/auth/facebook", ah.Facebook)
	r.Get("/auth/me", ah.Me)
	r.Get("/health/db", dbHealth(gw))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, verify))

		// Habits.
		r.Get("/habits", h.ListHabits)
		r.Post("/habits", h.CreateHabit)
		r.Delete("/habits/{id}", h.DeleteHabit)
		r.Get("/habits/{id}/streak", h.HabitStreak)

		// Entries.
		r.Get("/entries/date/{date}", h.EntriesByDate)
		r.Get("/entries/range/{start}/{end}", h.EntriesByRange)
		r.Post("/entries", h.SaveEntry)
		r.Delete("/entries/{id}", h.DeleteEntry)

		// Notes and ideas.
		r.Get("/notes", h.ListNotes)
		r.Post("/notes", h.SaveNote)
		r.Delete("/notes/{id}", h.DeleteNote)
		r.Get("/ideas", h.ListIdeas)
		r.Post("/ideas", h.SaveIdea)
		r.Delete("/ideas/{id}", h.DeleteIdea)

		// AI proxy.
		r.Post("/ai/analyze-plan", aih.AnalyzePlan)
		r.Post("/ai/habit-nudge", aih.HabitNudge)

		// SSE endpoint (protected by same auth middleware).
		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}

// dbHealth re-probes the primary store and reports which backend is
// serving. The endpoint never fails: the memory fallback keeps the
// service available when SQLite is not.
func dbHealth(gw *store.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backend := "sqlite"
		if !gw.Refresh(r.Context()) {
			backend = "memory"
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"database": backend,
		})
	}
}
