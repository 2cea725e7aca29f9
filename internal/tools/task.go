package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Kastalien-Research/thoughtbox-sub003/internal/coordinator"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/storage"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/task"
	"github.com/mark3labs/mcp-go/mcp"
)

// TaskCreateTool handles the task_create MCP tool.
type TaskCreateTool struct {
	coord *coordinator.Coordinator
}

// NewTaskCreateTool creates a TaskCreateTool.
func NewTaskCreateTool(coord *coordinator.Coordinator) *TaskCreateTool {
	return &TaskCreateTool{coord: coord}
}

// Definition returns the MCP tool definition for task_create.
func (t *TaskCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("task_create",
		mcp.WithDescription(
			"Claim a unit of collaborative work. The task starts open and moves "+
				"through a fixed lifecycle (open → in_progress → completed → archived, "+
				"with blocked as a detour). It cannot be completed until every "+
				"completion criterion is checked.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("What the task is about"),
		),
		mcp.WithString("criteria",
			mcp.Description("Completion criteria, one per line. Each must be checked off "+
				"via task_check_criterion before the task can complete."),
		),
		mcp.WithString("agent_id",
			mcp.Description("Agent claiming the task"),
		),
		mcp.WithString("session_id",
			mcp.Description("Reasoning session this task came out of"),
		),
	)
}

// Handle processes the task_create tool call.
func (t *TaskCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if strings.TrimSpace(title) == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	var criteria []string
	for _, line := range strings.Split(req.GetString("criteria", ""), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			criteria = append(criteria, trimmed)
		}
	}

	tk, err := t.coord.CreateTask(title, criteria, req.GetString("agent_id", ""), req.GetString("session_id", ""))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown session %q", req.GetString("session_id", ""))), nil
		}
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return jsonResult(tk)
}

// ─── TaskTransitionTool ──────────────────────────────────────────────────────

// TaskTransitionTool handles the task_transition MCP tool.
type TaskTransitionTool struct {
	coord *coordinator.Coordinator
}

// NewTaskTransitionTool creates a TaskTransitionTool.
func NewTaskTransitionTool(coord *coordinator.Coordinator) *TaskTransitionTool {
	return &TaskTransitionTool{coord: coord}
}

// Definition returns the MCP tool definition for task_transition.
func (t *TaskTransitionTool) Definition() mcp.Tool {
	return mcp.NewTool("task_transition",
		mcp.WithDescription(
			"Move a task to a new status. Transitions are validated against a fixed "+
				"table; completing requires all criteria checked, and the rejection "+
				"names the unchecked criterion indices. Archived is terminal.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task to transition"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Target status"),
			mcp.Enum("open", "in_progress", "blocked", "completed", "archived"),
		),
	)
}

// Handle processes the task_transition tool call.
func (t *TaskTransitionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("task_id", "")
	to := req.GetString("to", "")
	if id == "" {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}
	if to == "" {
		return mcp.NewToolResultError("'to' is required"), nil
	}

	tk, err := t.coord.TransitionTask(id, task.Status(to))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown task %q", id)), nil
		}
		return taskErrorResult(err)
	}
	return jsonResult(tk)
}

// ─── TaskCheckCriterionTool ──────────────────────────────────────────────────

// TaskCheckCriterionTool handles the task_check_criterion MCP tool.
type TaskCheckCriterionTool struct {
	coord *coordinator.Coordinator
}

// NewTaskCheckCriterionTool creates a TaskCheckCriterionTool.
func NewTaskCheckCriterionTool(coord *coordinator.Coordinator) *TaskCheckCriterionTool {
	return &TaskCheckCriterionTool{coord: coord}
}

// Definition returns the MCP tool definition for task_check_criterion.
func (t *TaskCheckCriterionTool) Definition() mcp.Tool {
	return mcp.NewTool("task_check_criterion",
		mcp.WithDescription(
			"Check off one completion criterion of a task, by zero-based index. "+
				"Progress is broadcast so waiting agents see it without polling.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task owning the criterion"),
		),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Zero-based criterion index"),
		),
	)
}

// Handle processes the task_check_criterion tool call.
func (t *TaskCheckCriterionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("task_id", "")
	if id == "" {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}
	index := intArg(req, "index", -1)

	tk, err := t.coord.CheckTaskCriterion(id, index)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown task %q", id)), nil
		}
		return taskErrorResult(err)
	}
	return jsonResult(tk)
}

// ─── TaskNoteTool ────────────────────────────────────────────────────────────

// TaskNoteTool handles the task_note MCP tool.
type TaskNoteTool struct {
	coord *coordinator.Coordinator
}

// NewTaskNoteTool creates a TaskNoteTool.
func NewTaskNoteTool(coord *coordinator.Coordinator) *TaskNoteTool {
	return &TaskNoteTool{coord: coord}
}

// Definition returns the MCP tool definition for task_note.
func (t *TaskNoteTool) Definition() mcp.Tool {
	return mcp.NewTool("task_note",
		mcp.WithDescription(
			"Append a progress note to a task. Notes are append-only and broadcast "+
				"to waiting agents.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task to annotate"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Note text"),
		),
		mcp.WithString("agent_id",
			mcp.Description("Agent writing the note"),
		),
	)
}

// Handle processes the task_note tool call.
func (t *TaskNoteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("task_id", "")
	text := req.GetString("text", "")
	if id == "" {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}

	tk, err := t.coord.AddTaskNote(id, text, req.GetString("agent_id", ""))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown task %q", id)), nil
		}
		return nil, fmt.Errorf("adding note: %w", err)
	}
	return jsonResult(tk)
}
