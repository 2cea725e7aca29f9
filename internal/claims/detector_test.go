package claims

import (
	"testing"

	"github.com/Kastalien-Research/thoughtbox-sub003/internal/hub"
)

// recordingBus captures published events for assertions.
type recordingBus struct {
	events []hub.Event
}

func (r *recordingBus) Publish(e hub.Event) {
	r.events = append(r.events, e)
}

func claim(subject, value string, pol Polarity, thoughtID, agentID string) Claim {
	return Claim{
		Subject:         subject,
		Predicate:       "is",
		Value:           value,
		Polarity:        pol,
		Confidence:      1.0,
		SourceThoughtID: thoughtID,
		AgentID:         agentID,
	}
}

// --- Direct negation ---

func TestDetect_DirectNegation(t *testing.T) {
	d := NewDetector(DefaultPolicy(), nil, nil)

	existing := []Claim{claim("cache", "stale", Asserted, "t-1", "agent-a")}
	incoming := []Claim{claim("cache", "stale", Negated, "t-2", "agent-b")}

	res := d.Detect("s-1", incoming, existing)
	if len(res.Conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(res.Conflicts))
	}
	c := res.Conflicts[0]
	if c.Kind != KindDirectNegation {
		t.Errorf("kind = %s, want direct-negation", c.Kind)
	}
	if c.Severity != SeverityHigh {
		t.Errorf("severity = %s, want high for two confident claims", c.Severity)
	}
	if c.ClaimA.SourceThoughtID != "t-2" || c.ClaimB.SourceThoughtID != "t-1" {
		t.Errorf("claim order wrong: newer should be ClaimA: %+v", c)
	}
}

func TestDetect_SymmetricRegardlessOfOrder(t *testing.T) {
	d := NewDetector(DefaultPolicy(), nil, nil)

	a := claim("cache", "stale", Asserted, "t-1", "agent-a")
	b := claim("cache", "stale", Negated, "t-2", "agent-b")

	forward := d.Detect("s-1", []Claim{b}, []Claim{a})
	reverse := d.Detect("s-1", []Claim{a}, []Claim{b})

	if len(forward.Conflicts) != 1 || len(reverse.Conflicts) != 1 {
		t.Fatalf("forward=%d reverse=%d conflicts, want exactly 1 each",
			len(forward.Conflicts), len(reverse.Conflicts))
	}
	if forward.Conflicts[0].Kind != KindDirectNegation || reverse.Conflicts[0].Kind != KindDirectNegation {
		t.Error("both orders should report direct-negation")
	}
}

func TestDetect_LowConfidenceNegationIsMediumSeverity(t *testing.T) {
	d := NewDetector(DefaultPolicy(), nil, nil)

	a := claim("cache", "stale", Asserted, "t-1", "agent-a")
	b := claim("cache", "stale", Negated, "t-2", "agent-b")
	b.Confidence = 0.6

	res := d.Detect("s-1", []Claim{b}, []Claim{a})
	if len(res.Conflicts) != 1 || res.Conflicts[0].Severity != SeverityMedium {
		t.Errorf("conflicts = %+v, want one medium-severity", res.Conflicts)
	}
}

func TestDetect_OppositePolarityDifferentValuesIsConsistent(t *testing.T) {
	d := NewDetector(DefaultPolicy(), nil, nil)

	// "cache is stale" and "cache is not empty" can both hold.
	existing := []Claim{claim("cache", "stale", Asserted, "t-1", "agent-a")}
	incoming := []Claim{claim("cache", "empty", Negated, "t-2", "agent-b")}

	res := d.Detect("s-1", incoming, existing)
	if len(res.Conflicts) != 0 {
		t.Errorf("got %d conflicts, want 0: %+v", len(res.Conflicts), res.Conflicts)
	}
}

// --- No false positives ---

func TestDetect_DisjointSubjectsNeverConflict(t *testing.T) {
	d := NewDetector(DefaultPolicy(), nil, nil)

	subjects := []string{"cache", "parser", "deploy", "index", "scheduler"}
	var existing []Claim
	for i, s := range subjects {
		pol := Asserted
		if i%2 == 1 {
			pol = Negated
		}
		existing = append(existing, claim(s, "broken", pol, "t-1", "agent-a"))
	}

	incoming := []Claim{claim("a completely different thing", "broken", Negated, "t-2", "agent-b")}
	res := d.Detect("s-1", incoming, existing)
	if len(res.Conflicts) != 0 {
		t.Errorf("disjoint subjects produced conflicts: %+v", res.Conflicts)
	}
}

// --- Mutual exclusion (assumed policy, see DESIGN.md) ---

func TestDetect_NumericMutualExclusion_AssumedPolicy(t *testing.T) {
	// Policy assumption: with zero tolerance, any numeric difference on
	// the same key is exclusive. This is configured, not inferred.
	d := NewDetector(DefaultPolicy(), nil, nil)

	existing := []Claim{claim("timeout", "30", Asserted, "t-1", "agent-a")}
	incoming := []Claim{claim("timeout", "50", Asserted, "t-2", "agent-b")}

	res := d.Detect("s-1", incoming, existing)
	if len(res.Conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(res.Conflicts))
	}
	if res.Conflicts[0].Kind != KindMutualExclusion {
		t.Errorf("kind = %s, want mutual-exclusion", res.Conflicts[0].Kind)
	}
}

func TestDetect_NumericWithinTolerance_AssumedPolicy(t *testing.T) {
	policy := DefaultPolicy()
	policy.NumericTolerance = 0.5
	d := NewDetector(policy, nil, nil)

	existing := []Claim{claim("timeout", "30", Asserted, "t-1", "agent-a")}
	incoming := []Claim{claim("timeout", "40", Asserted, "t-2", "agent-b")}

	res := d.Detect("s-1", incoming, existing)
	if len(res.Conflicts) != 0 {
		t.Errorf("values within tolerance conflicted: %+v", res.Conflicts)
	}
}

func TestDetect_CategoricalExclusionOffByDefault_AssumedPolicy(t *testing.T) {
	d := NewDetector(DefaultPolicy(), nil, nil)

	existing := []Claim{claim("cache", "stale", Asserted, "t-1", "agent-a")}
	incoming := []Claim{claim("cache", "empty", Asserted, "t-2", "agent-b")}

	res := d.Detect("s-1", incoming, existing)
	if len(res.Conflicts) != 0 {
		t.Errorf("categorical values conflicted with policy off: %+v", res.Conflicts)
	}
}

func TestDetect_CategoricalExclusionWhenEnabled_AssumedPolicy(t *testing.T) {
	policy := DefaultPolicy()
	policy.CategoricalExclusive = true
	d := NewDetector(policy, nil, nil)

	existing := []Claim{claim("strategy", "rollback", Asserted, "t-1", "agent-a")}
	incoming := []Claim{claim("strategy", "roll-forward", Asserted, "t-2", "agent-b")}

	res := d.Detect("s-1", incoming, existing)
	if len(res.Conflicts) != 1 || res.Conflicts[0].Kind != KindMutualExclusion {
		t.Errorf("conflicts = %+v, want one mutual-exclusion", res.Conflicts)
	}
}

// --- Superseded ---

func TestDetect_SameAgentSupersedesOwnClaim(t *testing.T) {
	d := NewDetector(DefaultPolicy(), nil, nil)

	existing := []Claim{claim("cache", "stale", Asserted, "t-1", "agent-a")}
	incoming := []Claim{claim("cache", "stale", Negated, "t-2", "agent-a")}

	res := d.Detect("s-1", incoming, existing)
	if len(res.Conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(res.Conflicts))
	}
	c := res.Conflicts[0]
	if c.Kind != KindSuperseded || c.Severity != SeverityInfo {
		t.Errorf("conflict = %+v, want informational superseded notice", c)
	}
}

func TestDetect_VerbatimRestatementIsSilent(t *testing.T) {
	d := NewDetector(DefaultPolicy(), nil, nil)

	existing := []Claim{claim("cache", "stale", Asserted, "t-1", "agent-a")}
	incoming := []Claim{claim("cache", "stale", Asserted, "t-2", "agent-a")}

	res := d.Detect("s-1", incoming, existing)
	if len(res.Conflicts) != 0 {
		t.Errorf("verbatim restatement produced %+v", res.Conflicts)
	}
}

// --- Tie break ---

func TestDetect_MostRecentCounterpartWins(t *testing.T) {
	d := NewDetector(DefaultPolicy(), nil, nil)

	// agent-a asserted, then agent-b already negated it. The most recent
	// claim (negated) is the current counterpart, so a new negated claim
	// agrees with it: no new conflict.
	existing := []Claim{
		claim("cache", "stale", Asserted, "t-1", "agent-a"),
		claim("cache", "stale", Negated, "t-2", "agent-b"),
	}
	incoming := []Claim{claim("cache", "stale", Negated, "t-3", "agent-c")}

	res := d.Detect("s-1", incoming, existing)
	if len(res.Conflicts) != 0 {
		t.Errorf("conflict raised against a superseded counterpart: %+v", res.Conflicts)
	}
}

// --- Event emission ---

func TestDetect_HardConflictPublishesEvent(t *testing.T) {
	bus := &recordingBus{}
	d := NewDetector(DefaultPolicy(), bus, nil)

	existing := []Claim{claim("cache", "stale", Asserted, "t-1", "agent-a")}
	incoming := []Claim{claim("cache", "stale", Negated, "t-2", "agent-b")}

	d.Detect("s-1", incoming, existing)
	if len(bus.events) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.events))
	}
	e := bus.events[0]
	if e.Type != hub.EventConflictDetected || e.SessionID != "s-1" {
		t.Errorf("event = %+v", e)
	}
	payload, ok := e.Payload.(hub.ConflictDetectedPayload)
	if !ok {
		t.Fatalf("payload type %T", e.Payload)
	}
	if payload.Kind != string(KindDirectNegation) || payload.ThoughtA != "t-2" || payload.ThoughtB != "t-1" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestDetect_SupersededNoticeDoesNotPublish(t *testing.T) {
	bus := &recordingBus{}
	d := NewDetector(DefaultPolicy(), bus, nil)

	existing := []Claim{claim("cache", "stale", Asserted, "t-1", "agent-a")}
	incoming := []Claim{claim("cache", "stale", Negated, "t-2", "agent-a")}

	d.Detect("s-1", incoming, existing)
	if len(bus.events) != 0 {
		t.Errorf("superseded notice published %d events, want 0", len(bus.events))
	}
}
