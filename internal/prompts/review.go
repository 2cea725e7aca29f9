package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReviewPrompt handles the reason-review MCP prompt.
// It instructs the AI to audit a session: verify the chains, surface
// conflicts, and summarize where the branches diverge.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("reason-review",
		mcp.WithPromptDescription(
			"Audit a reasoning session: verify the tamper-evident chains, "+
				"compare divergent branches, and report open conflicts and task state.",
		),
		mcp.WithArgument("session_id",
			mcp.ArgumentDescription("Session to review"),
		),
	)
}

// Handle processes the reason-review prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	sessionID := ""
	if args := req.Params.Arguments; args != nil {
		sessionID = args["session_id"]
	}
	target := "the session"
	if sessionID != "" {
		target = "session '" + sessionID + "'"
	}

	return &mcp.GetPromptResult{
		Description: "Review reasoning session",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please audit " + target + ".\n\n" +
						"Then:\n" +
						"1. Run `verify_chain` on each branch and flag any reported break index\n" +
						"2. Run `diff_branches` between the main line and each explored branch, " +
						"and summarize what each side added since the fork\n" +
						"3. List unresolved conflicts between agents, highest severity first\n" +
						"4. Check the `reasoning://tasks` resource and tell me which tasks are " +
						"blocked or still have unchecked completion criteria",
				),
			},
		},
	}, nil
}
