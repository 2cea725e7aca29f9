// Package task owns the collaborative reasoning-task lifecycle: the
// task model, the fixed status transition table, and completion-criteria
// checks.
//
// Tasks are created by an agent claiming work, mutated only through
// validated transitions, and archived terminally — never deleted.
package task

import "time"

// timeNow is a package-level var to allow test injection.
var timeNow = time.Now

// Status is a task's lifecycle state.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusCompleted  Status = "completed"
	StatusArchived   Status = "archived"
)

// validStatuses is the set of recognized statuses.
var validStatuses = map[Status]bool{
	StatusOpen:       true,
	StatusInProgress: true,
	StatusBlocked:    true,
	StatusCompleted:  true,
	StatusArchived:   true,
}

// ValidateStatus returns an error if the status is not recognized.
func ValidateStatus(s Status) error {
	if !validStatuses[s] {
		return &Error{
			Code:    CodeUnknownStatus,
			Message: "unknown task status " + string(s) + ": must be one of: open, in_progress, blocked, completed, archived",
		}
	}
	return nil
}

// Criterion is one completion-criteria entry.
type Criterion struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// Note is one append-only progress note.
type Note struct {
	Text      string `json:"text"`
	AgentID   string `json:"agent_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Task is the root record for a unit of collaborative work.
type Task struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Status         Status      `json:"status"`
	Criteria       []Criterion `json:"completion_criteria"`
	Notes          []Note      `json:"notes"`
	AssignedAgents []string    `json:"assigned_agents"`
	LinkedSessions []string    `json:"linked_sessions"`
	CreatedAt      string      `json:"created_at"`
	UpdatedAt      string      `json:"updated_at"`
}

// New creates an open task with the given title and criteria texts.
func New(id, title string, criteriaTexts []string) *Task {
	now := timeNow().UTC().Format(time.RFC3339)
	criteria := make([]Criterion, len(criteriaTexts))
	for i, text := range criteriaTexts {
		criteria[i] = Criterion{Text: text}
	}
	return &Task{
		ID:             id,
		Title:          title,
		Status:         StatusOpen,
		Criteria:       criteria,
		Notes:          []Note{},
		AssignedAgents: []string{},
		LinkedSessions: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
