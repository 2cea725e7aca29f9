// Package coordinator wires the reasoning core together: it runs the
// submit-thought pipeline (attribution → chain linkage → claim
// extraction → conflict detection → events), validates task mutations
// through the state machine, and exposes branch diff, chain
// verification, and long-poll waits to the tool layer.
//
// The coordinator holds no domain state of its own. Thoughts and tasks
// live in the store; only the hub's subscriber set is in-memory. Writes
// to one branch or task are assumed serialized by the caller.
package coordinator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Kastalien-Research/thoughtbox-sub003/internal/claims"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/config"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/diff"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/hub"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/storage"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/task"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/thought"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// timeNow is a package-level var to allow test injection.
var timeNow = time.Now

// newID is a package-level var to allow test injection.
var newID = func() string { return uuid.NewString() }

// Store is the narrow persistence contract the coordinator consumes.
// storage.Store satisfies it; tests may substitute their own.
type Store interface {
	CreateSession(id, title string) (*storage.Session, error)
	GetSession(id string) (*storage.Session, error)
	CompleteSession(id, summary string) (*storage.Session, error)
	ListSessions(limit int) ([]storage.Session, error)

	AppendThought(t *thought.Thought) error
	ListBranchThoughts(sessionID, branchID string) ([]thought.Thought, error)
	ListBranches(sessionID string) ([]string, error)

	CreateTask(t *task.Task) error
	LoadTask(id string) (*task.Task, error)
	SaveTask(t *task.Task) error
	ListTasks(status task.Status, limit int) ([]task.Task, error)
}

// Coordinator is the facade the tool layer calls into.
type Coordinator struct {
	store    Store
	bus      *hub.Bus
	detector *claims.Detector
	waitCfg  config.WaitConfig
	log      *zap.Logger
}

// New creates a Coordinator. A nil logger is replaced with a no-op one.
func New(store Store, bus *hub.Bus, detector *claims.Detector, waitCfg config.WaitConfig, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{store: store, bus: bus, detector: detector, waitCfg: waitCfg, log: log}
}

// SubmitInput is one agent's thought submission.
type SubmitInput struct {
	SessionID string `json:"session_id"`
	BranchID  string `json:"branch_id,omitempty"`
	Content   string `json:"content"`
	AgentID   string `json:"agent_id,omitempty"`
	AgentName string `json:"agent_name,omitempty"`
}

// SubmitResult is the stored thought plus any conflicts its claims
// raised against the branch's existing claim set.
type SubmitResult struct {
	Thought   thought.Thought   `json:"thought"`
	Conflicts []claims.Conflict `json:"conflicts,omitempty"`
}

// SubmitThought runs the full write pipeline for one thought.
func (c *Coordinator) SubmitThought(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("thought content is required")
	}
	if in.BranchID == "" {
		in.BranchID = thought.DefaultBranch
	}
	if _, err := c.store.GetSession(in.SessionID); err != nil {
		return nil, err
	}

	branch, err := c.store.ListBranchThoughts(in.SessionID, in.BranchID)
	if err != nil {
		return nil, fmt.Errorf("loading branch: %w", err)
	}

	t := thought.Thought{
		ID:         newID(),
		SessionID:  in.SessionID,
		BranchID:   in.BranchID,
		Content:    in.Content,
		Timestamp:  timeNow().UTC().Format(time.RFC3339),
		ParentHash: thought.ResolveParentHash(branch),
	}
	thought.Stamp(&t, in.AgentID, in.AgentName)
	t.Hash = thought.ComputeHash(&t)

	if err := c.store.AppendThought(&t); err != nil {
		return nil, fmt.Errorf("appending thought: %w", err)
	}

	// Claims are derived data, recomputed from the branch on demand.
	// One unparseable thought never blocks detection for the rest.
	existing := c.branchClaims(branch)
	newClaims := claims.ParseClaims(t.Content, t.ID, t.AgentID)
	if len(newClaims) == 0 {
		c.log.Debug("no claims extracted",
			zap.String("thought_id", t.ID),
			zap.String("session_id", t.SessionID),
		)
	}
	result := c.detector.Detect(in.SessionID, newClaims, existing)

	c.bus.Publish(hub.Event{
		Type:      hub.EventThoughtAdded,
		SessionID: in.SessionID,
		Payload: hub.ThoughtAddedPayload{
			ThoughtID: t.ID,
			BranchID:  t.BranchID,
			AgentID:   t.AgentID,
		},
	})

	return &SubmitResult{Thought: t, Conflicts: result.Conflicts}, nil
}

// branchClaims re-extracts the claim set of an ordered branch.
func (c *Coordinator) branchClaims(branch []thought.Thought) []claims.Claim {
	var out []claims.Claim
	for i := range branch {
		out = append(out, claims.ParseClaims(branch[i].Content, branch[i].ID, branch[i].AgentID)...)
	}
	return out
}

// VerifyBranch walks a stored branch's hash chain. A broken chain is a
// reported outcome, not an error.
func (c *Coordinator) VerifyBranch(sessionID, branchID string) (thought.ChainVerification, error) {
	if branchID == "" {
		branchID = thought.DefaultBranch
	}
	branch, err := c.store.ListBranchThoughts(sessionID, branchID)
	if err != nil {
		return thought.ChainVerification{}, fmt.Errorf("loading branch: %w", err)
	}
	return thought.VerifyChain(branch), nil
}

// DiffBranches computes the structural diff between two branches of a
// session.
func (c *Coordinator) DiffBranches(sessionID, branchA, branchB string) (*diff.BranchDiff, error) {
	if branchA == "" {
		branchA = thought.DefaultBranch
	}
	if branchB == "" {
		branchB = thought.DefaultBranch
	}
	a, err := c.store.ListBranchThoughts(sessionID, branchA)
	if err != nil {
		return nil, fmt.Errorf("loading branch %q: %w", branchA, err)
	}
	b, err := c.store.ListBranchThoughts(sessionID, branchB)
	if err != nil {
		return nil, fmt.Errorf("loading branch %q: %w", branchB, err)
	}
	d := diff.Compute(a, b)
	// Compute labels from tips; fall back to requested names for empty
	// branches so renderings stay addressable.
	if d.BranchA == "" {
		d.BranchA = branchA
	}
	if d.BranchB == "" {
		d.BranchB = branchB
	}
	return &d, nil
}

// StartSession creates a new active session.
func (c *Coordinator) StartSession(title string) (*storage.Session, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("session title is required")
	}
	return c.store.CreateSession(newID(), title)
}

// CompleteSession marks a session completed and publishes the
// session_completed event.
func (c *Coordinator) CompleteSession(id, summary string) (*storage.Session, error) {
	sess, err := c.store.CompleteSession(id, summary)
	if err != nil {
		return nil, err
	}
	c.bus.Publish(hub.Event{
		Type:      hub.EventSessionCompleted,
		SessionID: id,
		Payload:   hub.SessionCompletedPayload{Summary: summary},
	})
	return sess, nil
}

// CreateTask creates an open task and persists it. A non-empty
// sessionID links the task to the session it came out of.
func (c *Coordinator) CreateTask(title string, criteria []string, agentID, sessionID string) (*task.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("task title is required")
	}
	if sessionID != "" {
		if _, err := c.store.GetSession(sessionID); err != nil {
			return nil, err
		}
	}
	tk := task.New(newID(), title, criteria)
	if agentID != "" {
		tk.AssignedAgents = append(tk.AssignedAgents, agentID)
	}
	if sessionID != "" {
		tk.LinkedSessions = append(tk.LinkedSessions, sessionID)
	}
	if err := c.store.CreateTask(tk); err != nil {
		return nil, err
	}
	return tk, nil
}

// TransitionTask validates and applies a status change, persists it,
// and publishes task_status_changed. Validation failures come back as
// *task.Error values for the tool layer to surface.
func (c *Coordinator) TransitionTask(id string, to task.Status) (*task.Task, error) {
	tk, err := c.store.LoadTask(id)
	if err != nil {
		return nil, err
	}
	from := tk.Status
	if err := task.Transition(tk, to); err != nil {
		return nil, err
	}
	if err := c.store.SaveTask(tk); err != nil {
		return nil, err
	}
	c.bus.Publish(hub.Event{
		Type:   hub.EventTaskStatusChanged,
		TaskID: id,
		Payload: hub.TaskStatusChangedPayload{
			From: string(from),
			To:   string(to),
		},
	})
	return tk, nil
}

// CheckTaskCriterion marks one completion criterion checked, persists,
// and publishes a task_note_added progress event.
func (c *Coordinator) CheckTaskCriterion(id string, index int) (*task.Task, error) {
	tk, err := c.store.LoadTask(id)
	if err != nil {
		return nil, err
	}
	if err := task.CheckCriterion(tk, index); err != nil {
		return nil, err
	}
	if err := c.store.SaveTask(tk); err != nil {
		return nil, err
	}
	c.bus.Publish(hub.Event{
		Type:   hub.EventTaskNoteAdded,
		TaskID: id,
		Payload: hub.TaskNoteAddedPayload{
			Note: fmt.Sprintf("criterion %d checked: %s", index, tk.Criteria[index].Text),
		},
	})
	return tk, nil
}

// AddTaskNote appends a progress note, persists, and publishes
// task_note_added.
func (c *Coordinator) AddTaskNote(id, text, agentID string) (*task.Task, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("note text is required")
	}
	tk, err := c.store.LoadTask(id)
	if err != nil {
		return nil, err
	}
	task.AddNote(tk, text, agentID)
	if err := c.store.SaveTask(tk); err != nil {
		return nil, err
	}
	c.bus.Publish(hub.Event{
		Type:    hub.EventTaskNoteAdded,
		TaskID:  id,
		Payload: hub.TaskNoteAddedPayload{Note: text, AgentID: agentID},
	})
	return tk, nil
}

// WaitForEvent blocks until an event matching the filter arrives or the
// timeout elapses. A zero timeout uses the configured default; requests
// above the configured maximum are clamped, not rejected, so callers
// can always long-poll with their preferred cadence.
func (c *Coordinator) WaitForEvent(ctx context.Context, pred hub.Predicate, timeoutMs int) (hub.WaitResult, error) {
	if timeoutMs <= 0 {
		timeoutMs = c.waitCfg.DefaultTimeoutMs
	}
	if timeoutMs > c.waitCfg.MaxTimeoutMs {
		timeoutMs = c.waitCfg.MaxTimeoutMs
	}
	return c.bus.Wait(ctx, pred, time.Duration(timeoutMs)*time.Millisecond)
}
