package thought

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GenesisHash is the ParentHash of the first thought in every branch.
// It is a fixed public constant and can never collide with a real
// digest (real hashes are 64 hex characters).
const GenesisHash = "genesis"

// fieldSep separates canonicalized fields before hashing. A control
// character keeps ordinary thought content from forging field boundaries.
const fieldSep = "\x1f"

// ComputeHash returns the sha256 digest over the thought's canonical
// serialization: content, agent id, agent name, timestamp, and parent
// hash, in that fixed order. The same logical thought always hashes
// identically regardless of how the struct was assembled.
func ComputeHash(t *Thought) string {
	canonical := strings.Join([]string{
		t.Content,
		t.AgentID,
		t.AgentName,
		t.Timestamp,
		t.ParentHash,
	}, fieldSep)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// ResolveParentHash returns the hash a newly appended thought must link
// to: the chain tip's hash, or the genesis sentinel for an empty branch.
// The branch slice must be in append order.
func ResolveParentHash(branch []Thought) string {
	if len(branch) == 0 {
		return GenesisHash
	}
	return branch[len(branch)-1].Hash
}

// ChainVerification reports the outcome of walking a branch's chain.
// FirstBreakIndex is -1 when the chain is intact.
type ChainVerification struct {
	Valid           bool `json:"valid"`
	FirstBreakIndex int  `json:"first_break_index"`
}

// VerifyChain recomputes every hash in the ordered sequence and checks
// both the digest and the parent linkage. It fails fast at the first
// mismatch and reports that index; it never attempts repair. A broken
// chain is a reported fact, not an error — callers decide whether it
// blocks anything.
func VerifyChain(thoughts []Thought) ChainVerification {
	expectedParent := GenesisHash
	for i := range thoughts {
		t := &thoughts[i]
		if t.ParentHash != expectedParent {
			return ChainVerification{Valid: false, FirstBreakIndex: i}
		}
		if ComputeHash(t) != t.Hash {
			return ChainVerification{Valid: false, FirstBreakIndex: i}
		}
		expectedParent = t.Hash
	}
	return ChainVerification{Valid: true, FirstBreakIndex: -1}
}
