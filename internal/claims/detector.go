package claims

import (
	"math"
	"strconv"

	"github.com/Kastalien-Research/thoughtbox-sub003/internal/hub"
	"go.uber.org/zap"
)

// ConflictKind classifies a detected contradiction.
type ConflictKind string

const (
	// KindDirectNegation: opposing polarity on the same subject,
	// predicate, and value.
	KindDirectNegation ConflictKind = "direct-negation"
	// KindMutualExclusion: same polarity but incompatible values for a
	// value-encoding predicate.
	KindMutualExclusion ConflictKind = "mutual-exclusion"
	// KindSuperseded: the same agent re-asserted its own earlier claim.
	// Informational, not a hard conflict, and never published as an event.
	KindSuperseded ConflictKind = "superseded-by-newer"
)

// Severity levels for conflicts.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityInfo   = "info"
)

// Conflict is an immutable record of a contradiction between two claims.
// ClaimA is the newer claim, ClaimB the existing counterpart.
type Conflict struct {
	ClaimA   Claim        `json:"claim_a"`
	ClaimB   Claim        `json:"claim_b"`
	Kind     ConflictKind `json:"kind"`
	Severity string       `json:"severity"`
}

// ConflictResult is the output of one detection pass.
type ConflictResult struct {
	Conflicts []Conflict `json:"conflicts"`
}

// Policy configures the contested parts of detection. What counts as
// "incompatible values" for an arbitrary predicate is not a settled
// question, so it is a knob here rather than a hardcoded interpretation.
type Policy struct {
	// NumericTolerance is the relative difference two numeric values may
	// have before they are considered mutually exclusive. 0 means any
	// difference conflicts.
	NumericTolerance float64 `yaml:"numeric_tolerance"`
	// CategoricalExclusive, when true, treats unequal non-numeric values
	// under the same key as mutually exclusive. Off by default: "cache is
	// stale" and "cache is empty" may both hold, so flagging them would
	// be a false positive.
	CategoricalExclusive bool `yaml:"categorical_exclusive"`
	// HighSeverityConfidence is the confidence both sides of a direct
	// negation need before it is reported as high severity.
	HighSeverityConfidence float64 `yaml:"high_severity_confidence"`
}

// DefaultPolicy returns the conservative defaults.
func DefaultPolicy() Policy {
	return Policy{
		NumericTolerance:       0,
		CategoricalExclusive:   false,
		HighSeverityConfidence: 0.75,
	}
}

// Detector compares new claims against a branch's existing claim set.
// It publishes a conflict_detected hub event for each new hard conflict;
// superseded notices never generate events.
type Detector struct {
	policy Policy
	bus    hub.Publisher
	log    *zap.Logger
}

// NewDetector creates a Detector. bus may be nil for pure detection
// (no events published); a nil logger is replaced with a no-op one.
func NewDetector(policy Policy, bus hub.Publisher, log *zap.Logger) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{policy: policy, bus: bus, log: log}
}

// Detect compares each new claim against the existing claims, in order.
// existing must be in thought order (oldest first): when several
// existing claims share a key, the most recent one is the current
// counterpart and earlier ones are already superseded, so only the
// current one can produce a new conflict.
func (d *Detector) Detect(sessionID string, newClaims, existing []Claim) ConflictResult {
	var result ConflictResult

	// Most recent existing claim per key wins as the counterpart.
	current := make(map[string]Claim, len(existing))
	for _, c := range existing {
		current[c.Key()] = c
	}

	for _, nc := range newClaims {
		counterpart, ok := current[nc.Key()]
		if !ok {
			current[nc.Key()] = nc
			continue
		}

		conflict, found := d.compare(nc, counterpart)
		if found {
			result.Conflicts = append(result.Conflicts, conflict)
			if conflict.Kind != KindSuperseded && d.bus != nil {
				d.bus.Publish(hub.Event{
					Type:      hub.EventConflictDetected,
					SessionID: sessionID,
					Payload: hub.ConflictDetectedPayload{
						Kind:     string(conflict.Kind),
						Severity: conflict.Severity,
						Subject:  conflict.ClaimA.Subject,
						ThoughtA: conflict.ClaimA.SourceThoughtID,
						ThoughtB: conflict.ClaimB.SourceThoughtID,
					},
				})
			}
		}

		// The new claim becomes the current counterpart for its key.
		current[nc.Key()] = nc
	}
	return result
}

// compare classifies the relation between a new claim and its current
// counterpart. Returns false when the two claims are compatible.
func (d *Detector) compare(newClaim, counterpart Claim) (Conflict, bool) {
	// An agent restating its own position supersedes it, whatever
	// changed. This is informational, never a hard conflict.
	if newClaim.AgentID != "" && newClaim.AgentID == counterpart.AgentID {
		if newClaim.Polarity == counterpart.Polarity && newClaim.Value == counterpart.Value {
			// Verbatim restatement is not even worth a notice.
			return Conflict{}, false
		}
		return Conflict{ClaimA: newClaim, ClaimB: counterpart, Kind: KindSuperseded, Severity: SeverityInfo}, true
	}

	if newClaim.Polarity != counterpart.Polarity {
		// Opposing polarity contradicts only when both sides talk about
		// the same value: "X is stale" vs "X is not stale". "X is stale"
		// vs "X is not empty" is consistent.
		if newClaim.Value != counterpart.Value {
			return Conflict{}, false
		}
		severity := SeverityMedium
		if newClaim.Confidence >= d.policy.HighSeverityConfidence &&
			counterpart.Confidence >= d.policy.HighSeverityConfidence {
			severity = SeverityHigh
		}
		return Conflict{ClaimA: newClaim, ClaimB: counterpart, Kind: KindDirectNegation, Severity: severity}, true
	}

	// Same polarity: check value compatibility.
	if newClaim.Value == counterpart.Value {
		return Conflict{}, false
	}
	if d.valuesExclusive(newClaim.Value, counterpart.Value) {
		return Conflict{ClaimA: newClaim, ClaimB: counterpart, Kind: KindMutualExclusion, Severity: SeverityMedium}, true
	}
	return Conflict{}, false
}

// valuesExclusive applies the configured policy to two unequal values.
func (d *Detector) valuesExclusive(a, b string) bool {
	na, errA := strconv.ParseFloat(a, 64)
	nb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		// Relative difference against the larger magnitude.
		larger := math.Max(math.Abs(na), math.Abs(nb))
		if larger == 0 {
			return false
		}
		return math.Abs(na-nb)/larger > d.policy.NumericTolerance
	}
	return d.policy.CategoricalExclusive
}
