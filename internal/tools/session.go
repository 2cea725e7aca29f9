package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Kastalien-Research/thoughtbox-sub003/internal/coordinator"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

// SessionStartTool handles the session_start MCP tool.
type SessionStartTool struct {
	coord *coordinator.Coordinator
}

// NewSessionStartTool creates a SessionStartTool.
func NewSessionStartTool(coord *coordinator.Coordinator) *SessionStartTool {
	return &SessionStartTool{coord: coord}
}

// Definition returns the MCP tool definition for session_start.
func (t *SessionStartTool) Definition() mcp.Tool {
	return mcp.NewTool("session_start",
		mcp.WithDescription(
			"Open a new reasoning session. Multiple agents contribute thoughts into "+
				"the session via the think tool; the returned session id groups them.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short description of what this session reasons about"),
		),
	)
}

// Handle processes the session_start tool call.
func (t *SessionStartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if strings.TrimSpace(title) == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	sess, err := t.coord.StartSession(title)
	if err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}
	return jsonResult(sess)
}

// ─── SessionCompleteTool ─────────────────────────────────────────────────────

// SessionCompleteTool handles the session_complete MCP tool.
type SessionCompleteTool struct {
	coord *coordinator.Coordinator
}

// NewSessionCompleteTool creates a SessionCompleteTool.
func NewSessionCompleteTool(coord *coordinator.Coordinator) *SessionCompleteTool {
	return &SessionCompleteTool{coord: coord}
}

// Definition returns the MCP tool definition for session_complete.
func (t *SessionCompleteTool) Definition() mcp.Tool {
	return mcp.NewTool("session_complete",
		mcp.WithDescription(
			"Mark a reasoning session completed with an optional summary. Waiting "+
				"agents observe the session_completed event.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session to complete"),
		),
		mcp.WithString("summary",
			mcp.Description("What the session concluded"),
		),
	)
}

// Handle processes the session_complete tool call.
func (t *SessionCompleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("session_id", "")
	if id == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}

	sess, err := t.coord.CompleteSession(id, req.GetString("summary", ""))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown session %q", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("cannot complete session: %v", err)), nil
	}
	return jsonResult(sess)
}
