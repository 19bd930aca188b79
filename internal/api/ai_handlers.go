package api

import (
	"net/http"
	"time"

	"github.com/daystack/daystack/internal/ai"
	"github.com/daystack/daystack/internal/models"
	"github.com/daystack/daystack/internal/schedule"
	"github.com/daystack/daystack/internal/tracker"
)

// AIHandler holds the AI proxy route handlers.
type AIHandler struct {
	ai  *ai.Client
	svc *tracker.Service
	now func() time.Time
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(client *ai.Client, svc *tracker.Service) *AIHandler {
	return &AIHandler{ai: client, svc: svc, now: time.Now}
}

// AnalyzePlan handles POST /api/ai/analyze-plan.
//
//	@Summary		Decompose a free-text plan into dated tasks
//	@Tags			ai
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AnalyzePlanRequest	true	"Plan text and optional anchor date"
//	@Success		200		{object}	models.PlanAnalysis
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ai/analyze-plan [post]
func (h *AIHandler) AnalyzePlan(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[AnalyzePlanRequest](w, r)
	if !ok {
		return
	}
	analysis, err := h.ai.AnalyzePlan(r.Context(), req.Content, req.StartDate)
	if err != nil {
		writeError(w, "analyze plan", err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// HabitNudge handles POST /api/ai/habit-nudge.
//
//	@Summary		Suggest nudges for habits not yet completed today
//	@Tags			ai
//	@Accept			json
//	@Produce		json
//	@Param			body	body		HabitNudgeRequest	true	"Current time hint"
//	@Success		200		{object}	map[string]any
//	@Failure		502		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ai/habit-nudge [post]
func (h *AIHandler) HabitNudge(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[HabitNudgeRequest](w, r)
	if !ok {
		return
	}
	owner := Owner(r)

	habits, err := h.svc.Habits(r.Context(), owner)
	if err != nil {
		writeError(w, "habit nudge", err)
		return
	}
	today, err := h.svc.EntriesForDate(r.Context(), owner, schedule.DayOf(h.now()))
	if err != nil {
		writeError(w, "habit nudge", err)
		return
	}

	nudges, err := h.ai.HabitNudges(r.Context(), habits, completedNames(habits, today), req.CurrentTime)
	if err != nil {
		writeError(w, "habit nudge", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"nudges": nudges})
}

// completedNames resolves today's completed habit entries to habit names.
func completedNames(habits []models.Habit, entries []models.Entry) []string {
	byID := make(map[string]string, len(habits))
	for _, h := range habits {
		byID[h.ID] = h.Name
	}
	var names []string
	for _, e := range entries {
		if e.Kind != models.EntryKindHabit || !e.Completed {
			continue
		}
		if name, ok := byID[e.HabitID]; ok {
			names = append(names, name)
		}
	}
	return names
}
