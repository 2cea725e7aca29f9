package tools

import (
	"context"
	"fmt"

	"github.com/Kastalien-Research/thoughtbox-sub003/internal/coordinator"
	"github.com/mark3labs/mcp-go/mcp"
)

// VerifyChainTool handles the verify_chain MCP tool: it walks a stored
// branch's hash chain and reports whether the recorded reasoning trail
// is intact. A break is reported with its index, never repaired.
type VerifyChainTool struct {
	coord *coordinator.Coordinator
}

// NewVerifyChainTool creates a VerifyChainTool.
func NewVerifyChainTool(coord *coordinator.Coordinator) *VerifyChainTool {
	return &VerifyChainTool{coord: coord}
}

// Definition returns the MCP tool definition for registration.
func (t *VerifyChainTool) Definition() mcp.Tool {
	return mcp.NewTool("verify_chain",
		mcp.WithDescription(
			"Verify the tamper-evident hash chain of a reasoning branch. Recomputes "+
				"every thought's hash and checks parent linkage. Reports the index of the "+
				"first break if the trail was tampered with. The caller decides whether a "+
				"broken chain quarantines the branch.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session owning the branch"),
		),
		mcp.WithString("branch_id",
			mcp.Description("Branch to verify. Defaults to the main line."),
		),
	)
}

// Handle processes the verify_chain tool call.
func (t *VerifyChainTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}

	v, err := t.coord.VerifyBranch(sessionID, req.GetString("branch_id", ""))
	if err != nil {
		return nil, fmt.Errorf("verifying chain: %w", err)
	}
	return jsonResult(v)
}
