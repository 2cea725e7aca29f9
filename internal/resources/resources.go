// Package resources implements MCP resource handlers for the reasoning
// coordination server.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (reasoning://...) following MCP
// conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Kastalien-Research/thoughtbox-sub003/internal/storage"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/task"
	"github.com/mark3labs/mcp-go/mcp"
)

// listLimit caps resource listings. Hosts wanting history beyond this
// should page through the tools instead.
const listLimit = 100

// Store is the read surface the resource handlers consume.
// storage.Store satisfies it.
type Store interface {
	ListSessions(limit int) ([]storage.Session, error)
	ListTasks(status task.Status, limit int) ([]task.Task, error)
}

// Handler manages the reasoning resource endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// SessionsResource returns the MCP resource definition for the session
// list.
func (h *Handler) SessionsResource() mcp.Resource {
	return mcp.NewResource(
		"reasoning://sessions",
		"Reasoning Sessions",
		mcp.WithResourceDescription("Recent reasoning sessions, newest first, with status and summary"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleSessions returns the recent session list as JSON.
func (h *Handler) HandleSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := h.store.ListSessions(listLimit)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, sessions)
}

// TasksResource returns the MCP resource definition for the task list.
func (h *Handler) TasksResource() mcp.Resource {
	return mcp.NewResource(
		"reasoning://tasks",
		"Coordination Tasks",
		mcp.WithResourceDescription("Tasks across all sessions with status, criteria, and notes"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleTasks returns the task list as JSON.
func (h *Handler) HandleTasks(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tasks, err := h.store.ListTasks("", listLimit)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, tasks)
}

// jsonResource marshals v as a single JSON resource content.
func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
