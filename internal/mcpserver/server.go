// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes daystack tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/daystack/daystack/internal/models"
	"github.com/daystack/daystack/internal/schedule"
	"github.com/daystack/daystack/internal/tracker"
)

// Server wraps the MCP server with daystack tools. Tools operate in
// single-tenant local mode (the unowned collection), matching disabled-auth
// HTTP mode.
type Server struct {
	mcp *server.MCPServer
	svc *tracker.Service
	now func() time.Time
}

// New creates a new MCP server with all daystack tools registered.
func New(svc *tracker.Service) *Server {
	s := &Server{svc: svc, now: time.Now}

	s.mcp = server.NewMCPServer(
		"daystack",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_habits",
		mcp.WithDescription("List all habits with their recurrence rules, newest first."),
	), s.listHabits)

	s.mcp.AddTool(mcp.NewTool("today_entries",
		mcp.WithDescription("List today's timeline entries. Habits due today are materialized first."),
	), s.todayEntries)

	s.mcp.AddTool(mcp.NewTool("complete_entry",
		mcp.WithDescription("Mark a timeline entry as completed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
		mcp.WithString("date", mcp.Description("Day the entry belongs to (YYYY-MM-DD, defaults to today)")),
	), s.completeEntry)

	s.mcp.AddTool(mcp.NewTool("habit_streak",
		mcp.WithDescription("Compute the current consecutive-completion streak for a habit."),
		mcp.WithString("habit_id", mcp.Required(), mcp.Description("Habit id (see list_habits)")),
	), s.habitStreak)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a freeform note."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Description("Note body")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("capture_idea",
		mcp.WithDescription("Capture an idea for later planning."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Idea title")),
		mcp.WithString("description", mcp.Description("Longer description")),
		mcp.WithString("category", mcp.Description("Free-text category, e.g. learning")),
	), s.captureIdea)

	// Resource: today's timeline as JSON.
	s.mcp.AddResource(
		mcp.NewResource("daystack://today", "Today's Timeline",
			mcp.WithResourceDescription("Today's entries including materialized due habits."),
			mcp.WithMIMEType("application/json"),
		),
		s.readTodayResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listHabits(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	habits, err := s.svc.Habits(ctx, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(habits, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) todayEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.svc.EntriesForDate(ctx, "", schedule.DayOf(s.now()))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) completeEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	day := schedule.DayOf(s.now())
	if raw, dErr := req.RequireString("date"); dErr == nil && raw != "" {
		day, err = schedule.ParseDay(raw)
		if err != nil {
			return mcp.NewToolResultError("date must be YYYY-MM-DD"), nil
		}
	}

	entries, err := s.svc.EntriesForDate(ctx, "", day)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	for _, e := range entries {
		if e.ID != id {
			continue
		}
		e.Completed = true
		saved, err := s.svc.SaveEntry(ctx, "", e)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, _ := json.MarshalIndent(saved, "", "  ")
		return mcp.NewToolResultText(string(out)), nil
	}
	return mcp.NewToolResultError(fmt.Sprintf("entry %s not found on %s", id, schedule.FormatDay(day))), nil
}

func (s *Server) habitStreak(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	habitID, err := req.RequireString("habit_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	streak, err := s.svc.StreakFor(ctx, "", habitID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.Marshal(map[string]any{"habitId": habitID, "streak": streak})
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content := ""
	if v, cErr := req.RequireString("content"); cErr == nil {
		content = v
	}
	note, err := s.svc.SaveNote(ctx, "", models.Note{Title: title, Content: content})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) captureIdea(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	idea := models.Idea{Title: title}
	if v, dErr := req.RequireString("description"); dErr == nil {
		idea.Description = v
	}
	if v, cErr := req.RequireString("category"); cErr == nil {
		idea.Category = v
	}
	saved, err := s.svc.SaveIdea(ctx, "", idea)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(saved, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readTodayResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries, err := s.svc.EntriesForDate(ctx, "", schedule.DayOf(s.now()))
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "daystack://today",
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
