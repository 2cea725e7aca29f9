package task

import (
	"fmt"
	"strings"
	"time"
)

// Error codes for task validation failures. These are expected,
// recoverable outcomes carried back to the caller — not control-flow
// exceptions.
const (
	CodeUnknownStatus     = "unknown_status"
	CodeInvalidTransition = "invalid_transition"
	CodeCriteriaUnchecked = "criteria_unchecked"
	CodeCriterionIndex    = "criterion_index_out_of_range"
)

// Error is a validation failure with an explicit code. For
// criteria-gated completion rejections, UncheckedIndices names exactly
// which entries remain so the caller can report what is left.
type Error struct {
	Code             string `json:"code"`
	Message          string `json:"message"`
	UncheckedIndices []int  `json:"unchecked_indices,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// transitions is the fixed table of legal status edges. Archived is
// terminal: it has no outgoing edges.
var transitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusBlocked},
	StatusInProgress: {StatusCompleted, StatusBlocked, StatusOpen},
	StatusBlocked:    {StatusOpen, StatusInProgress, StatusArchived},
	StatusCompleted:  {StatusArchived},
	StatusArchived:   {},
}

// IsValidTransition reports whether the edge from → to exists in the
// transition table.
func IsValidTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AreAllCriteriaChecked reports whether every completion criterion is
// checked. Vacuously true for a task with no criteria.
func AreAllCriteriaChecked(criteria []Criterion) bool {
	for _, c := range criteria {
		if !c.Checked {
			return false
		}
	}
	return true
}

// UncheckedCriteriaIndices returns the indices of unchecked criteria,
// in order.
func UncheckedCriteriaIndices(criteria []Criterion) []int {
	var out []int
	for i, c := range criteria {
		if !c.Checked {
			out = append(out, i)
		}
	}
	return out
}

// Transition moves the task to a new status after validating the edge
// against the table and, for completion, the criteria gate. Invalid
// transitions are rejected, never silently coerced.
func Transition(t *Task, to Status) error {
	if err := ValidateStatus(to); err != nil {
		return err
	}
	if !IsValidTransition(t.Status, to) {
		return &Error{
			Code:    CodeInvalidTransition,
			Message: fmt.Sprintf("cannot transition task %q from %s to %s", t.ID, t.Status, to),
		}
	}
	if to == StatusCompleted && !AreAllCriteriaChecked(t.Criteria) {
		unchecked := UncheckedCriteriaIndices(t.Criteria)
		return &Error{
			Code: CodeCriteriaUnchecked,
			Message: fmt.Sprintf("cannot complete task %q: criteria %s still unchecked",
				t.ID, formatIndices(unchecked)),
			UncheckedIndices: unchecked,
		}
	}

	t.Status = to
	t.UpdatedAt = timeNow().UTC().Format(time.RFC3339)
	return nil
}

// CheckCriterion marks one criterion checked. Checking an already
// checked criterion is a no-op, not an error.
func CheckCriterion(t *Task, index int) error {
	if index < 0 || index >= len(t.Criteria) {
		return &Error{
			Code:    CodeCriterionIndex,
			Message: fmt.Sprintf("task %q has no criterion %d (have %d)", t.ID, index, len(t.Criteria)),
		}
	}
	t.Criteria[index].Checked = true
	t.UpdatedAt = timeNow().UTC().Format(time.RFC3339)
	return nil
}

// AddNote appends a progress note. Notes are append-only.
func AddNote(t *Task, text, agentID string) {
	now := timeNow().UTC().Format(time.RFC3339)
	t.Notes = append(t.Notes, Note{Text: text, AgentID: agentID, CreatedAt: now})
	t.UpdatedAt = now
}

func formatIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
