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

// ThinkTool handles the think MCP tool: it submits one thought into a
// session branch, chains it, and reports any conflicts the thought's
// claims raised against other agents' assertions.
type ThinkTool struct {
	coord *coordinator.Coordinator
}

// NewThinkTool creates a ThinkTool.
func NewThinkTool(coord *coordinator.Coordinator) *ThinkTool {
	return &ThinkTool{coord: coord}
}

// Definition returns the MCP tool definition for registration.
func (t *ThinkTool) Definition() mcp.Tool {
	return mcp.NewTool("think",
		mcp.WithDescription(
			"Contribute a thought to a reasoning session. The thought is stamped with "+
				"your agent identity, linked into the branch's tamper-evident hash chain, "+
				"and checked for logical conflicts against claims made by other agents. "+
				"Any detected conflicts are returned and broadcast to waiting agents.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session to contribute to (from session_start)"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The thought text. Assertions like 'X is Y' or 'X is not Y' are "+
				"extracted as claims for conflict detection. Hedging words lower claim "+
				"confidence; an explicit '(confidence: 0.8)' marker overrides it."),
		),
		mcp.WithString("branch_id",
			mcp.Description("Reasoning branch within the session. Defaults to the main line."),
		),
		mcp.WithString("agent_id",
			mcp.Description("Stable identifier of the contributing agent"),
		),
		mcp.WithString("agent_name",
			mcp.Description("Human-readable name of the contributing agent"),
		),
	)
}

// Handle processes the think tool call.
func (t *ThinkTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := coordinator.SubmitInput{
		SessionID: req.GetString("session_id", ""),
		BranchID:  req.GetString("branch_id", ""),
		Content:   req.GetString("content", ""),
		AgentID:   req.GetString("agent_id", ""),
		AgentName: req.GetString("agent_name", ""),
	}
	if in.SessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	if strings.TrimSpace(in.Content) == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}

	res, err := t.coord.SubmitThought(ctx, in)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown session %q — call session_start first", in.SessionID)), nil
		}
		return nil, fmt.Errorf("submitting thought: %w", err)
	}
	return jsonResult(res)
}
