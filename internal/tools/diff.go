package tools

import (
	"context"
	"fmt"

	"github.com/Kastalien-Research/thoughtbox-sub003/internal/coordinator"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/diff"
	"github.com/mark3labs/mcp-go/mcp"
)

// DiffBranchesTool handles the diff_branches MCP tool: structural
// comparison of two reasoning branches, rendered as a merged timeline,
// a side-by-side split view, or raw JSON.
type DiffBranchesTool struct {
	coord *coordinator.Coordinator
}

// NewDiffBranchesTool creates a DiffBranchesTool.
func NewDiffBranchesTool(coord *coordinator.Coordinator) *DiffBranchesTool {
	return &DiffBranchesTool{coord: coord}
}

// Definition returns the MCP tool definition for registration.
func (t *DiffBranchesTool) Definition() mcp.Tool {
	return mcp.NewTool("diff_branches",
		mcp.WithDescription(
			"Compare two reasoning branches of a session. Walks both hash chains back "+
				"to their fork point and reports what each side added since. Disjoint "+
				"branches report no common ancestor and both sides in full.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session owning both branches"),
		),
		mcp.WithString("branch_a",
			mcp.Required(),
			mcp.Description("First branch id"),
		),
		mcp.WithString("branch_b",
			mcp.Required(),
			mcp.Description("Second branch id"),
		),
		mcp.WithString("view",
			mcp.Description("How to render the diff: timeline (merged linear view), "+
				"split (side by side), or json (raw structure). Default: timeline"),
			mcp.Enum("timeline", "split", "json"),
		),
	)
}

// Handle processes the diff_branches tool call.
func (t *DiffBranchesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	branchA := req.GetString("branch_a", "")
	branchB := req.GetString("branch_b", "")
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	if branchA == "" || branchB == "" {
		return mcp.NewToolResultError("'branch_a' and 'branch_b' are required"), nil
	}

	d, err := t.coord.DiffBranches(sessionID, branchA, branchB)
	if err != nil {
		return nil, fmt.Errorf("computing branch diff: %w", err)
	}

	switch req.GetString("view", "timeline") {
	case "split":
		return mcp.NewToolResultText(diff.RenderSplitDiff(*d)), nil
	case "json":
		return jsonResult(d)
	default:
		return mcp.NewToolResultText(diff.RenderTimeline(*d)), nil
	}
}
