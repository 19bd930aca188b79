package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daystack/daystack/internal/tracker"
)

// Handler holds habit, entry, note and idea route handlers.
type Handler struct {
	svc *tracker.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *tracker.Service) *Handler {
	return &Handler{svc: svc}
}

// decode reads a JSON body into a validatable request type.
func decode[T interface{ Validate() error }](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return req, false
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return req, false
	}
	return req, true
}

// ListHabits handles GET /api/habits.
//
//	@Summary		List the caller's habits, newest first
//	@Tags			habits
//	@Produce		json
//	@Success		200	{object}	HabitListResponse
//	@Security		BearerAuth
//	@Router			/habits [get]
func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	habits, err := h.svc.Habits(r.Context(), Owner(r))
	if err != nil {
		writeError(w, "list habits", err)
		return
	}
	writeJSON(w, http.StatusOK, HabitListResponse{Habits: habits})
}

// CreateHabit handles POST /api/habits.
//
//	@Summary		Create a habit and pre-populate the coming week's entries
//	@Tags			habits
//	@Accept			json
//	@Produce		json
//	@Param			body	body		HabitRequest	true	"Habit to create"
//	@Success		201		{object}	models.Habit
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/habits [post]
func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[HabitRequest](w, r)
	if !ok {
		return
	}
	habit, err := h.svc.CreateHabit(r.Context(), Owner(r), req.habit())
	if err != nil {
		writeError(w, "create habit", err)
		return
	}
	writeJSON(w, http.StatusCreated, habit)
}

// DeleteHabit handles DELETE /api/habits/{id}.
//
//	@Summary		Delete a habit and all of its entries
//	@Tags			habits
//	@Param			id	path	string	true	"Habit id"
//	@Success		204	"Habit deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/habits/{id} [delete]
func (h *Handler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteHabit(r.Context(), Owner(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete habit", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HabitStreak handles GET /api/habits/{id}/streak.
//
//	@Summary		Compute the habit's current consecutive-completion streak
//	@Tags			habits
//	@Produce		json
//	@Param			id	path		string	true	"Habit id"
//	@Success		200	{object}	StreakResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/habits/{id}/streak [get]
func (h *Handler) HabitStreak(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	streak, err := h.svc.StreakFor(r.Context(), Owner(r), id)
	if err != nil {
		writeError(w, "habit streak", err)
		return
	}
	writeJSON(w, http.StatusOK, StreakResponse{HabitID: id, Streak: streak})
}

// EntriesByDate handles GET /api/entries/date/{date}.
//
//	@Summary		List a day's entries, materializing due habits first
//	@Tags			entries
//	@Produce		json
//	@Param			date	path		string	true	"Day (YYYY-MM-DD)"
//	@Success		200		{object}	EntryListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/date/{date} [get]
func (h *Handler) EntriesByDate(w http.ResponseWriter, r *http.Request) {
	day, ok := parseDayParam(chi.URLParam(r, "date"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("date must be YYYY-MM-DD"))
		return
	}
	entries, err := h.svc.EntriesForDate(r.Context(), Owner(r), day)
	if err != nil {
		writeError(w, "entries by date", err)
		return
	}
	writeJSON(w, http.StatusOK, EntryListResponse{Entries: entries})
}

// EntriesByRange handles GET /api/entries/range/{start}/{end}.
//
//	@Summary		List entries within an inclusive day range
//	@Tags			entries
//	@Produce		json
//	@Param			start	path		string	true	"Range start (YYYY-MM-DD)"
//	@Param			end		path		string	true	"Range end (YYYY-MM-DD)"
//	@Success		200		{object}	EntryListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/range/{start}/{end} [get]
func (h *Handler) EntriesByRange(w http.ResponseWriter, r *http.Request) {
	start, okStart := parseDayParam(chi.URLParam(r, "start"))
	end, okEnd := parseDayParam(chi.URLParam(r, "end"))
	if !okStart || !okEnd {
		writeJSON(w, http.StatusBadRequest, errorBody("start and end must be YYYY-MM-DD"))
		return
	}
	if end.Before(start) {
		writeJSON(w, http.StatusBadRequest, errorBody("end must not precede start"))
		return
	}
	entries, err := h.svc.EntriesForRange(r.Context(), Owner(r), start, end)
	if err != nil {
		writeError(w, "entries by range", err)
		return
	}
	writeJSON(w, http.StatusOK, EntryListResponse{Entries: entries})
}

// SaveEntry handles POST /api/entries.
//
//	@Summary		Create or update an entry (completion toggle, reschedule, plan-task import)
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EntryRequest	true	"Entry to save"
//	@Success		200		{object}	models.Entry
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries [post]
func (h *Handler) SaveEntry(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[EntryRequest](w, r)
	if !ok {
		return
	}
	entry, err := h.svc.SaveEntry(r.Context(), Owner(r), req.entry())
	if err != nil {
		writeError(w, "save entry", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DeleteEntry handles DELETE /api/entries/{id}.
//
//	@Summary		Delete a single entry
//	@Tags			entries
//	@Param			id	path	string	true	"Entry id"
//	@Success		204	"Entry deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{id} [delete]
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEntry(r.Context(), Owner(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes, most recently updated first
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.Notes(r.Context(), Owner(r))
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

// SaveNote handles POST /api/notes.
//
//	@Summary		Create or update a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NoteRequest	true	"Note to save"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) SaveNote(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[NoteRequest](w, r)
	if !ok {
		return
	}
	note, err := h.svc.SaveNote(r.Context(), Owner(r), req.note())
	if err != nil {
		writeError(w, "save note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			id	path	string	true	"Note id"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNote(r.Context(), Owner(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListIdeas handles GET /api/ideas.
//
//	@Summary		List ideas, most recently updated first
//	@Tags			ideas
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/ideas [get]
func (h *Handler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	ideas, err := h.svc.Ideas(r.Context(), Owner(r))
	if err != nil {
		writeError(w, "list ideas", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ideas": ideas})
}

// SaveIdea handles POST /api/ideas.
//
//	@Summary		Capture or update an idea
//	@Tags			ideas
//	@Accept			json
//	@Produce		json
//	@Param			body	body		IdeaRequest	true	"Idea to save"
//	@Success		200		{object}	models.Idea
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ideas [post]
func (h *Handler) SaveIdea(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[IdeaRequest](w, r)
	if !ok {
		return
	}
	idea, err := h.svc.SaveIdea(r.Context(), Owner(r), req.idea())
	if err != nil {
		writeError(w, "save idea", err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// DeleteIdea handles DELETE /api/ideas/{id}.
//
//	@Summary		Delete an idea
//	@Tags			ideas
//	@Param			id	path	string	true	"Idea id"
//	@Success		204	"Idea deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ideas/{id} [delete]
func (h *Handler) DeleteIdea(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteIdea(r.Context(), Owner(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete idea", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
