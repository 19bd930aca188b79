package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/daystack/daystack/internal/apperr"
	"github.com/daystack/daystack/internal/models"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"prose wrapped", `Here you go: {"summary":"x","tasks":[]} hope it helps`, `{"summary":"x","tasks":[]}`, true},
		{"array payload", `sure! [{"habitName":"Run"}] done`, `[{"habitName":"Run"}]`, true},
		{"braces in strings", `{"msg":"use {curly} braces","n":1}`, `{"msg":"use {curly} braces","n":1}`, true},
		{"escaped quote", `{"msg":"say \"hi\" {now}"}`, `{"msg":"say \"hi\" {now}"}`, true},
		{"nested", `{"a":{"b":[1,2,{"c":3}]}}`, `{"a":{"b":[1,2,{"c":3}]}}`, true},
		{"no payload", `I cannot help with that.`, "", false},
		{"unbalanced", `{"a": {"b": 1}`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			if tt.ok != (err == nil) {
				t.Fatalf("err = %v, want ok=%v", err, tt.ok)
			}
			if err != nil {
				if !errors.Is(err, apperr.ErrBadResponse) {
					t.Errorf("err = %v, want ErrBadResponse", err)
				}
				return
			}
			if string(got) != tt.want {
				t.Errorf("payload = %s, want %s", got, tt.want)
			}
		})
	}
}

// completionServer fakes the chat-completions endpoint and replies with the
// given message content.
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Error(err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(srv *httptest.Server) *Client {
	return New(Config{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model", Timeout: 5 * time.Second})
}

func TestAnalyzePlan(t *testing.T) {
	srv := completionServer(t, `Here is your plan: {"summary":"Two study sessions","tasks":[{"title":"Read chapter 1","date":"2024-03-04","time":"10:00","durationMinutes":60}]}`)
	c := testClient(srv)

	got, err := c.AnalyzePlan(context.Background(), "study for the exam", "2024-03-04")
	if err != nil {
		t.Fatalf("AnalyzePlan: %v", err)
	}
	if got.Summary != "Two study sessions" {
		t.Errorf("summary = %q", got.Summary)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].Title != "Read chapter 1" || got.Tasks[0].Date != "2024-03-04" {
		t.Errorf("tasks = %+v", got.Tasks)
	}
}

func TestAnalyzePlanMalformedResponse(t *testing.T) {
	srv := completionServer(t, `I decomposed your plan into three tasks, good luck!`)
	c := testClient(srv)

	_, err := c.AnalyzePlan(context.Background(), "anything", "")
	if !errors.Is(err, apperr.ErrBadResponse) {
		t.Errorf("err = %v, want ErrBadResponse", err)
	}
}

func TestAnalyzePlanValidation(t *testing.T) {
	srv := completionServer(t, `{}`)
	c := testClient(srv)

	if _, err := c.AnalyzePlan(context.Background(), "   ", ""); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("empty content = %v, want ErrInvalid", err)
	}
	if _, err := c.AnalyzePlan(context.Background(), "plan", "03/04/2024"); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("bad date = %v, want ErrInvalid", err)
	}
}

func TestClientUnconfigured(t *testing.T) {
	c := New(Config{BaseURL: "http://localhost:0"})
	if c.Enabled() {
		t.Fatal("client without key reports enabled")
	}
	if _, err := c.AnalyzePlan(context.Background(), "plan", ""); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("AnalyzePlan = %v, want ErrUnavailable", err)
	}
	if _, err := c.HabitNudges(context.Background(), []models.Habit{{ID: "h"}}, nil, ""); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("HabitNudges = %v, want ErrUnavailable", err)
	}
}

func TestHabitNudgesFiltersCompleted(t *testing.T) {
	srv := completionServer(t, `[
		{"habitName":"Run","habitId":"h1","suggestedTime":"18:00","message":"Lace up!"},
		{"habitName":"Read","habitId":"h2","suggestedTime":"21:00","message":"One chapter."}
	]`)
	c := testClient(srv)

	habits := []models.Habit{
		{ID: "h1", Name: "Run", Frequency: models.FrequencyDaily},
		{ID: "h2", Name: "Read", Frequency: models.FrequencyDaily},
	}
	got, err := c.HabitNudges(context.Background(), habits, []string{"Read"}, "17:30")
	if err != nil {
		t.Fatalf("HabitNudges: %v", err)
	}
	if len(got) != 1 || got[0].HabitName != "Run" {
		t.Errorf("nudges = %+v, want only Run", got)
	}
}

func TestHabitNudgesNoHabits(t *testing.T) {
	srv := completionServer(t, `[]`)
	c := testClient(srv)

	got, err := c.HabitNudges(context.Background(), nil, nil, "")
	if err != nil {
		t.Fatalf("HabitNudges: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("nudges = %+v, want none", got)
	}
}

func TestCompletionErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)
	c := testClient(srv)

	if _, err := c.AnalyzePlan(context.Background(), "plan", ""); err == nil {
		t.Fatal("expected error from non-200 completion")
	}
}
