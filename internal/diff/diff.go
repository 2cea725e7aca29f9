// Package diff computes structural differences between two reasoning
// branches and renders them as a merged timeline or a side-by-side
// split view.
//
// The diff walks both hash chains from their tips backward until a
// common hash is found: the fork point. Everything past the fork on each
// side is "added" relative to the other. Thoughts themselves are
// immutable, so there is no modified case for them — only for derived
// annotations such as a claim later marked superseded.
package diff

import "github.com/Kastalien-Research/thoughtbox-sub003/internal/thought"

// Annotation records a change to derived data attached to a thought
// that both branches share (the thought itself is immutable).
type Annotation struct {
	ThoughtID string `json:"thought_id"`
	Field     string `json:"field"`
	Note      string `json:"note"`
}

// BranchDiff is the structural comparison of two branches.
// CommonAncestorHash is the genesis sentinel when the branches share no
// history, in which case both sides are reported added in full.
type BranchDiff struct {
	BranchA            string            `json:"branch_a"`
	BranchB            string            `json:"branch_b"`
	CommonAncestorHash string            `json:"common_ancestor_hash"`
	AddedA             []thought.Thought `json:"added_a"`
	AddedB             []thought.Thought `json:"added_b"`
	Modified           []Annotation      `json:"modified"`
}

// Compute diffs two branches given their full thought sequences in
// append order. It is invoked on demand, never on every write.
func Compute(branchA, branchB []thought.Thought) BranchDiff {
	d := BranchDiff{
		CommonAncestorHash: thought.GenesisHash,
		Modified:           []Annotation{},
	}
	// Labels come from the tips: the shared prefix may carry the branch
	// id of the line it was forked from.
	if len(branchA) > 0 {
		d.BranchA = branchA[len(branchA)-1].BranchID
	}
	if len(branchB) > 0 {
		d.BranchB = branchB[len(branchB)-1].BranchID
	}

	posInA := make(map[string]int, len(branchA))
	for i, t := range branchA {
		posInA[t.Hash] = i
	}

	// Walk B from its tip backward; the first hash also present in A is
	// the fork point.
	forkA, forkB := -1, -1
	for i := len(branchB) - 1; i >= 0; i-- {
		if j, ok := posInA[branchB[i].Hash]; ok {
			forkA, forkB = j, i
			break
		}
	}

	if forkA >= 0 {
		d.CommonAncestorHash = branchA[forkA].Hash
	}
	d.AddedA = append([]thought.Thought{}, branchA[forkA+1:]...)
	d.AddedB = append([]thought.Thought{}, branchB[forkB+1:]...)
	return d
}
