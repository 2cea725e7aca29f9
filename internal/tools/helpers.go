// Package tools implements the MCP tool handlers for the reasoning
// coordination server.
//
// Each tool is a struct holding its dependencies (the coordinator
// facade), with Definition() returning the mcp.Tool schema and Handle()
// processing the request. Validation failures are returned as tool
// errors, never as Go errors: they are expected outcomes the calling
// agent is meant to read and react to.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Kastalien-Research/thoughtbox-sub003/internal/task"
	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// jsonResult marshals v as an indented JSON tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// taskErrorResult converts coordinator/task errors into tool results.
// task.Error values are expected validation outcomes and go back as
// structured tool errors; anything else propagates as a Go error.
func taskErrorResult(err error) (*mcp.CallToolResult, error) {
	var taskErr *task.Error
	if errors.As(err, &taskErr) {
		data, mErr := json.Marshal(taskErr)
		if mErr != nil {
			return mcp.NewToolResultError(taskErr.Message), nil
		}
		return mcp.NewToolResultError(string(data)), nil
	}
	return nil, err
}
