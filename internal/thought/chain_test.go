package thought

import (
	"fmt"
	"strings"
	"testing"
)

// --- Helpers ---

// buildChain creates n chained thoughts in one branch, hashing each one
// against its predecessor.
func buildChain(n int) []Thought {
	thoughts := make([]Thought, 0, n)
	parent := GenesisHash
	for i := 0; i < n; i++ {
		t := Thought{
			ID:         fmt.Sprintf("t-%d", i+1),
			SessionID:  "s-1",
			BranchID:   DefaultBranch,
			Content:    fmt.Sprintf("thought number %d", i+1),
			AgentID:    "agent-a",
			Timestamp:  fmt.Sprintf("2026-03-01T10:0%d:00Z", i),
			ParentHash: parent,
		}
		t.Hash = ComputeHash(&t)
		parent = t.Hash
		thoughts = append(thoughts, t)
	}
	return thoughts
}

// --- ComputeHash ---

func TestComputeHash_Deterministic(t *testing.T) {
	th := Thought{Content: "the cache is stale", AgentID: "a1", Timestamp: "2026-03-01T10:00:00Z", ParentHash: GenesisHash}
	h1 := ComputeHash(&th)
	h2 := ComputeHash(&th)
	if h1 != h2 {
		t.Errorf("same thought hashed differently: %s vs %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}
}

func TestComputeHash_SensitiveToEveryField(t *testing.T) {
	base := Thought{Content: "c", AgentID: "a", AgentName: "n", Timestamp: "ts", ParentHash: "p"}
	baseHash := ComputeHash(&base)

	variants := []Thought{
		{Content: "c2", AgentID: "a", AgentName: "n", Timestamp: "ts", ParentHash: "p"},
		{Content: "c", AgentID: "a2", AgentName: "n", Timestamp: "ts", ParentHash: "p"},
		{Content: "c", AgentID: "a", AgentName: "n2", Timestamp: "ts", ParentHash: "p"},
		{Content: "c", AgentID: "a", AgentName: "n", Timestamp: "ts2", ParentHash: "p"},
		{Content: "c", AgentID: "a", AgentName: "n", Timestamp: "ts", ParentHash: "p2"},
	}
	for i := range variants {
		if ComputeHash(&variants[i]) == baseHash {
			t.Errorf("variant %d produced the same hash as base", i)
		}
	}
}

func TestComputeHash_FieldBoundariesNotForgeable(t *testing.T) {
	// Content ending where the agent id begins must not collapse into
	// the same canonical string.
	a := Thought{Content: "ab", AgentID: "c"}
	b := Thought{Content: "a", AgentID: "bc"}
	if ComputeHash(&a) == ComputeHash(&b) {
		t.Error("shifted field boundary produced identical hashes")
	}
}

// --- ResolveParentHash ---

func TestResolveParentHash_EmptyBranch(t *testing.T) {
	if got := ResolveParentHash(nil); got != GenesisHash {
		t.Errorf("ResolveParentHash(empty) = %q, want genesis sentinel", got)
	}
}

func TestResolveParentHash_ReturnsTip(t *testing.T) {
	chain := buildChain(3)
	if got := ResolveParentHash(chain); got != chain[2].Hash {
		t.Errorf("ResolveParentHash = %q, want tip hash %q", got, chain[2].Hash)
	}
}

// --- VerifyChain ---

func TestVerifyChain_EmptyIsValid(t *testing.T) {
	v := VerifyChain(nil)
	if !v.Valid || v.FirstBreakIndex != -1 {
		t.Errorf("VerifyChain(empty) = %+v, want valid", v)
	}
}

func TestVerifyChain_IntactChain(t *testing.T) {
	for _, n := range []int{1, 2, 5, 20} {
		v := VerifyChain(buildChain(n))
		if !v.Valid {
			t.Errorf("chain of %d thoughts reported break at %d", n, v.FirstBreakIndex)
		}
	}
}

func TestVerifyChain_TamperedContentDetectedAtExactIndex(t *testing.T) {
	for tampered := 0; tampered < 5; tampered++ {
		chain := buildChain(5)
		chain[tampered].Content = "tampered"
		v := VerifyChain(chain)
		if v.Valid {
			t.Fatalf("tampering index %d went undetected", tampered)
		}
		if v.FirstBreakIndex != tampered {
			t.Errorf("tampered index %d reported as %d", tampered, v.FirstBreakIndex)
		}
	}
}

func TestVerifyChain_BrokenLinkage(t *testing.T) {
	chain := buildChain(4)
	chain[2].ParentHash = strings.Repeat("0", 64)
	v := VerifyChain(chain)
	if v.Valid || v.FirstBreakIndex != 2 {
		t.Errorf("VerifyChain = %+v, want break at index 2", v)
	}
}

func TestVerifyChain_FirstThoughtMustPointAtGenesis(t *testing.T) {
	chain := buildChain(2)
	chain[0].ParentHash = strings.Repeat("a", 64)
	v := VerifyChain(chain)
	if v.Valid || v.FirstBreakIndex != 0 {
		t.Errorf("VerifyChain = %+v, want break at index 0", v)
	}
}

// --- Stamp ---

func TestStamp_SetsAttribution(t *testing.T) {
	th := Thought{Content: "x"}
	Stamp(&th, "agent-7", "Verifier")
	if th.AgentID != "agent-7" || th.AgentName != "Verifier" {
		t.Errorf("Stamp did not set attribution: %+v", th)
	}
}

func TestStamp_EmptyValuesPreserveExisting(t *testing.T) {
	th := Thought{AgentID: "agent-7", AgentName: "Verifier"}
	Stamp(&th, "", "")
	if th.AgentID != "agent-7" || th.AgentName != "Verifier" {
		t.Errorf("Stamp with empty values erased attribution: %+v", th)
	}
}
