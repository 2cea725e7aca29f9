// Package thought defines the reasoning-thought data model and the
// hash chain that gives each branch an append-only, tamper-evident log.
//
// A Thought is immutable once created: corrections are new thoughts,
// never in-place edits. Within one branch, thoughts form a strict chain —
// thought n's ParentHash equals thought n-1's Hash, and the first thought
// in a branch points at the genesis sentinel.
package thought

// DefaultBranch is the branch id used for a session's main line when the
// caller does not name one.
const DefaultBranch = "main"

// Thought is a single node in a reasoning branch, persisted as one row
// in the thought store.
type Thought struct {
	ID         string `json:"id"`
	SessionID  string `json:"session_id"`
	BranchID   string `json:"branch_id"`
	Content    string `json:"content"`
	AgentID    string `json:"agent_id,omitempty"`
	AgentName  string `json:"agent_name,omitempty"`
	ParentHash string `json:"parent_hash"`
	Hash       string `json:"hash"`
	Timestamp  string `json:"timestamp"` // RFC3339 UTC
}

// Stamp records the originating agent's identity on a thought.
// Both fields may be empty for single-agent sessions; stamping with
// empty values is a no-op so earlier attribution is never erased.
func Stamp(t *Thought, agentID, agentName string) {
	if agentID != "" {
		t.AgentID = agentID
	}
	if agentName != "" {
		t.AgentName = agentName
	}
}
