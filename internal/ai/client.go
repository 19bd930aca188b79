// Package ai talks to an OpenAI-compatible chat-completions endpoint for
// plan decomposition and habit nudges. The remote service is opaque: one
// request, one response, no retries. Responses are expected to embed a
// single JSON payload, possibly surrounded by prose.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/daystack/daystack/internal/apperr"
	"github.com/daystack/daystack/internal/models"
	"github.com/daystack/daystack/internal/schedule"
)

// Config holds connection settings for the completion API.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls the completion API. A nil client (or one without an API key)
// reports ErrUnavailable from every operation.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	now        func() time.Time
}

// New creates a completion client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		now:        time.Now,
	}
}

// Enabled reports whether the client is configured to make requests.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

const planSystemPrompt = `You are a planning assistant. Decompose the user's free-text plan into
concrete calendar tasks. Respond with a single JSON object:
{"summary": "...", "tasks": [{"title": "...", "date": "YYYY-MM-DD", "time": "HH:MM", "durationMinutes": 30, "notes": "..."}]}
Dates start at the anchor date given by the user. Do not include any other text.`

// AnalyzePlan decomposes free text into an ordered set of dated tasks.
// startDate anchors the schedule and defaults to today.
func (c *Client) AnalyzePlan(ctx context.Context, content, startDate string) (*models.PlanAnalysis, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%w: AI is not configured", apperr.ErrUnavailable)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", apperr.ErrInvalid)
	}
	if startDate == "" {
		startDate = schedule.FormatDay(c.now())
	} else if _, err := schedule.ParseDay(startDate); err != nil {
		return nil, fmt.Errorf("%w: startDate must be YYYY-MM-DD", apperr.ErrInvalid)
	}

	user := fmt.Sprintf("Anchor date: %s\n\nPlan:\n%s", startDate, content)
	text, err := c.complete(ctx, planSystemPrompt, user)
	if err != nil {
		return nil, err
	}

	payload, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	var result models.PlanAnalysis
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrBadResponse, err.Error())
	}
	if result.Tasks == nil {
		result.Tasks = []models.PlanTask{}
	}
	return &result, nil
}

const nudgeSystemPrompt = `You are a habit coach. Given the user's habits and which of them are already
completed today, suggest a short nudge for each habit that is still open.
Respond with a single JSON array:
[{"habitName": "...", "habitId": "...", "suggestedTime": "HH:MM", "message": "..."}]
Only include habits that are not completed. Do not include any other text.`

// HabitNudges asks for per-habit encouragement for habits not yet completed
// today. The response is filtered again locally so a confused model cannot
// nudge an already-completed habit.
func (c *Client) HabitNudges(ctx context.Context, habits []models.Habit, completedToday []string, currentTime string) ([]models.HabitNudge, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%w: AI is not configured", apperr.ErrUnavailable)
	}
	if len(habits) == 0 {
		return []models.HabitNudge{}, nil
	}
	if currentTime == "" {
		currentTime = c.now().Format("15:04")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current time: %s\n\nHabits:\n", currentTime)
	for _, h := range habits {
		fmt.Fprintf(&b, "- %s (id %s, %s", h.Name, h.ID, h.Frequency)
		if h.TargetDurationMinutes > 0 {
			fmt.Fprintf(&b, ", %d min", h.TargetDurationMinutes)
		}
		b.WriteString(")\n")
	}
	b.WriteString("\nCompleted today:\n")
	if len(completedToday) == 0 {
		b.WriteString("(none)\n")
	}
	for _, name := range completedToday {
		fmt.Fprintf(&b, "- %s\n", name)
	}

	text, err := c.complete(ctx, nudgeSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}
	payload, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	var nudges []models.HabitNudge
	if err := json.Unmarshal(payload, &nudges); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrBadResponse, err.Error())
	}

	done := make(map[string]struct{}, len(completedToday))
	for _, name := range completedToday {
		done[name] = struct{}{}
	}
	out := make([]models.HabitNudge, 0, len(nudges))
	for _, n := range nudges {
		if _, ok := done[n.HabitName]; ok {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("ai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai: completion API returned status %d", resp.StatusCode)
	}
	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %s", apperr.ErrBadResponse, err.Error())
	}
	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", apperr.ErrBadResponse)
	}
	return decoded.Choices[0].Message.Content, nil
}
