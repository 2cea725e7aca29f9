package tools

import (
	"context"
	"strings"

	"github.com/Kastalien-Research/thoughtbox-sub003/internal/coordinator"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/hub"
	"github.com/mark3labs/mcp-go/mcp"
)

// WaitForEventTool handles the wait_for_event MCP tool: a long poll
// that suspends the caller until a matching hub event arrives or the
// timeout elapses. Timing out is a normal outcome — the agent simply
// re-issues the wait, which is the efficient alternative to busy
// polling the store.
type WaitForEventTool struct {
	coord *coordinator.Coordinator
}

// NewWaitForEventTool creates a WaitForEventTool.
func NewWaitForEventTool(coord *coordinator.Coordinator) *WaitForEventTool {
	return &WaitForEventTool{coord: coord}
}

// Definition returns the MCP tool definition for registration.
func (t *WaitForEventTool) Definition() mcp.Tool {
	return mcp.NewTool("wait_for_event",
		mcp.WithDescription(
			"Block until something relevant happens: a thought added, a conflict "+
				"detected, a task changed, or a session completed. Resolves with the "+
				"matching event, or with timed_out=true when nothing happened — then "+
				"just call it again. Filter by session, task, and event types.",
		),
		mcp.WithString("session_id",
			mcp.Description("Only match events for this session"),
		),
		mcp.WithString("task_id",
			mcp.Description("Only match events for this task"),
		),
		mcp.WithString("types",
			mcp.Description("Comma-separated event types to match: thought_added, "+
				"conflict_detected, task_status_changed, task_note_added, "+
				"session_completed. Empty matches all."),
		),
		mcp.WithNumber("timeout_ms",
			mcp.Description("How long to wait before giving up. Defaults to the server's "+
				"configured default; requests above the configured maximum are clamped."),
		),
	)
}

// Handle processes the wait_for_event tool call.
func (t *WaitForEventTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	taskID := req.GetString("task_id", "")

	var types []hub.EventType
	for _, raw := range strings.Split(req.GetString("types", ""), ",") {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			types = append(types, hub.EventType(trimmed))
		}
	}

	byType := hub.MatchSession(sessionID, types...)
	pred := func(e hub.Event) bool {
		if taskID != "" && e.TaskID != taskID {
			return false
		}
		return byType(e)
	}

	result, err := t.coord.WaitForEvent(ctx, pred, intArg(req, "timeout_ms", 0))
	if err != nil {
		// Cancellation: the caller went away; there is nobody to answer,
		// but MCP still wants a result shape.
		return nil, err
	}
	return jsonResult(result)
}
