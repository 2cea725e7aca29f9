// Package prompts implements MCP prompt handlers for the reasoning
// coordination server.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StartPrompt handles the reason-start MCP prompt.
// It guides the AI to open a reasoning session and begin contributing
// chained thoughts.
type StartPrompt struct{}

// NewStartPrompt creates a StartPrompt.
func NewStartPrompt() *StartPrompt {
	return &StartPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StartPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("reason-start",
		mcp.WithPromptDescription(
			"Open a shared reasoning session on a topic. Thoughts you and other "+
				"agents contribute are chained, claim-checked against each other, "+
				"and kept as an auditable trail.",
		),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("What the session should reason about"),
		),
		mcp.WithArgument("agent_name",
			mcp.ArgumentDescription("How to identify yourself on contributed thoughts"),
		),
	)
}

// Handle processes the reason-start prompt request.
func (p *StartPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := "the problem at hand"
	if args := req.Params.Arguments; args != nil {
		if t, ok := args["topic"]; ok && t != "" {
			topic = t
		}
	}

	agentName := ""
	if args := req.Params.Arguments; args != nil {
		agentName = args["agent_name"]
	}
	identity := ""
	if agentName != "" {
		identity = fmt.Sprintf(" Stamp your thoughts with agent_name='%s'.", agentName)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Start reasoning session: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to reason about '%s' in a shared, auditable session.\n\n"+
						"Please:\n"+
						"1. Run `session_start` with a short title for the topic\n"+
						"2. Contribute your analysis as `think` calls, one assertion per thought, "+
						"so claims can be extracted and checked for conflicts%s\n"+
						"3. When another line of reasoning seems promising, explore it on its own "+
						"branch_id instead of overwriting the main line\n"+
						"4. Report back any conflicts the think calls return, and use "+
						"`diff_branches` to compare explored alternatives\n"+
						"5. Finish with `session_complete` and a summary of what was concluded",
					topic, identity,
				)),
			},
		},
	}, nil
}
