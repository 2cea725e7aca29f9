// Package hub implements the in-process event bus and long-poll wait
// manager that decouple producers (chain writes, conflict detection,
// task transitions) from consumers (agents blocking for updates).
//
// A Bus instance is owned by the hosting process and passed to the
// components that publish on it — never a module-level global — so
// isolated hubs can coexist in tests.
package hub

import "time"

// timeNow is a package-level var to allow test injection.
var timeNow = time.Now

// EventType discriminates the closed set of event kinds on the bus.
type EventType string

const (
	EventThoughtAdded      EventType = "thought_added"
	EventConflictDetected  EventType = "conflict_detected"
	EventTaskStatusChanged EventType = "task_status_changed"
	EventTaskNoteAdded     EventType = "task_note_added"
	EventSessionCompleted  EventType = "session_completed"
)

// Payload is the marker interface for per-kind event payloads. Each
// event kind carries exactly one payload shape; consumers dispatch on
// Event.Type, not on structural inspection.
type Payload interface {
	isPayload()
}

// ThoughtAddedPayload accompanies EventThoughtAdded.
type ThoughtAddedPayload struct {
	ThoughtID string `json:"thought_id"`
	BranchID  string `json:"branch_id"`
	AgentID   string `json:"agent_id,omitempty"`
}

// ConflictDetectedPayload accompanies EventConflictDetected.
type ConflictDetectedPayload struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Subject  string `json:"subject"`
	ThoughtA string `json:"thought_a"`
	ThoughtB string `json:"thought_b"`
}

// TaskStatusChangedPayload accompanies EventTaskStatusChanged.
type TaskStatusChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TaskNoteAddedPayload accompanies EventTaskNoteAdded.
type TaskNoteAddedPayload struct {
	Note    string `json:"note"`
	AgentID string `json:"agent_id,omitempty"`
}

// SessionCompletedPayload accompanies EventSessionCompleted.
type SessionCompletedPayload struct {
	Summary string `json:"summary,omitempty"`
}

func (ThoughtAddedPayload) isPayload()      {}
func (ConflictDetectedPayload) isPayload()  {}
func (TaskStatusChangedPayload) isPayload() {}
func (TaskNoteAddedPayload) isPayload()     {}
func (SessionCompletedPayload) isPayload()  {}

// Event is an immutable fact published on the bus. Timestamp is filled
// by Publish if the producer left it empty.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	TaskID    string    `json:"task_id,omitempty"`
	Payload   Payload   `json:"payload,omitempty"`
	Timestamp string    `json:"timestamp"` // RFC3339 UTC
}
