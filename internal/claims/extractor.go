// Package claims extracts normalized logical claims from thought text
// and detects contradictions between them across agents.
//
// Extraction is deliberately conservative: conflict detection only needs
// directionally-comparable propositions, so a sentence that cannot be
// confidently parsed is dropped, never force-fit. Missed claims are an
// acceptable cost; spurious contradictions are not.
package claims

import (
	"strconv"
	"strings"
)

// Polarity is the direction of a claim's assertion.
type Polarity string

const (
	Asserted Polarity = "asserted"
	Negated  Polarity = "negated"
)

// Claim is a normalized proposition extracted from one thought. It is
// derived data: recomputed from the thought's content on demand, never
// persisted independently of its source thought.
type Claim struct {
	Subject         string   `json:"subject"`
	Predicate       string   `json:"predicate"`
	Value           string   `json:"value"`
	Polarity        Polarity `json:"polarity"`
	Confidence      float64  `json:"confidence"`
	SourceThoughtID string   `json:"source_thought_id"`
	AgentID         string   `json:"agent_id,omitempty"`
}

// Key returns the normalized (subject, predicate) comparison key two
// claims must share before they can conflict.
func (c Claim) Key() string {
	return c.Subject + "\x1f" + c.Predicate
}

// extractionRule maps a copula/verb cue to the polarity it signals and
// the canonical predicate it collapses to. The table is ordered: negated
// cues come before their asserted prefixes (" is not " before " is "),
// and plural forms collapse onto the singular canonical predicate so
// "the caches are stale" and "the cache is stale" share a key.
type extractionRule struct {
	cue       string
	polarity  Polarity
	predicate string
}

var extractionRules = []extractionRule{
	{" is not ", Negated, "is"},
	{" isn't ", Negated, "is"},
	{" is never ", Negated, "is"},
	{" are not ", Negated, "is"},
	{" aren't ", Negated, "is"},
	{" was not ", Negated, "was"},
	{" wasn't ", Negated, "was"},
	{" does not ", Negated, "does"},
	{" doesn't ", Negated, "does"},
	{" do not ", Negated, "does"},
	{" don't ", Negated, "does"},
	{" cannot ", Negated, "can"},
	{" can not ", Negated, "can"},
	{" can't ", Negated, "can"},
	{" will not ", Negated, "will"},
	{" won't ", Negated, "will"},
	{" should not ", Negated, "should"},
	{" shouldn't ", Negated, "should"},
	{" has no ", Negated, "has"},
	{" have no ", Negated, "has"},
	{" is ", Asserted, "is"},
	{" are ", Asserted, "is"},
	{" was ", Asserted, "was"},
	{" does ", Asserted, "does"},
	{" can ", Asserted, "can"},
	{" will ", Asserted, "will"},
	{" should ", Asserted, "should"},
	{" has ", Asserted, "has"},
	{" have ", Asserted, "has"},
}

// hedgeWords are modal hedges stripped during normalization. Their
// presence lowers the claim's confidence but does not change its key.
var hedgeWords = []string{
	"maybe", "perhaps", "probably", "possibly", "likely", "apparently",
	"presumably", "seemingly", "i think", "i believe", "i suspect",
	"it seems", "it appears", "arguably",
}

const (
	fullConfidence   = 1.0
	hedgedConfidence = 0.6
)

// ParseClaims extracts claims from thought content, in order of
// appearance. sourceThoughtID and agentID are stamped onto every
// extracted claim. Sentences with no recognized cue, or with an empty
// side around the cue, yield nothing.
func ParseClaims(content, sourceThoughtID, agentID string) []Claim {
	var out []Claim
	for _, sentence := range splitSentences(content) {
		c, ok := parseSentence(sentence)
		if !ok {
			continue
		}
		c.SourceThoughtID = sourceThoughtID
		c.AgentID = agentID
		out = append(out, c)
	}
	return out
}

// parseSentence applies the rule table to one sentence. The first cue
// found in rule-table order wins; a sentence with a subject or value
// side that normalizes to empty is dropped.
func parseSentence(sentence string) (Claim, bool) {
	confidence := fullConfidence

	// Lower-case up front so every later index into the sentence refers
	// to the same byte offsets: lowering can change a rune's encoded
	// length, so mixing lowered and original indices is unsafe.
	lowered := strings.ToLower(sentence)

	// An explicit confidence marker like "(confidence: 0.8)" overrides
	// hedge-based scoring.
	lowered, explicit, hasExplicit := extractConfidenceMarker(lowered)

	stripped, hedged := stripHedges(" " + strings.TrimSpace(lowered) + " ")
	if hedged {
		confidence = hedgedConfidence
	}
	if hasExplicit {
		confidence = explicit
	}

	for _, rule := range extractionRules {
		idx := strings.Index(stripped, rule.cue)
		if idx < 0 {
			continue
		}
		subject := normalizeTerm(stripped[:idx])
		value := normalizeTerm(stripped[idx+len(rule.cue):])
		if subject == "" || value == "" {
			return Claim{}, false
		}
		return Claim{
			Subject:    subject,
			Predicate:  rule.predicate,
			Value:      value,
			Polarity:   rule.polarity,
			Confidence: confidence,
		}, true
	}
	return Claim{}, false
}

// splitSentences breaks content on sentence terminators and newlines.
// A period between two digits is a decimal point, not a terminator, so
// "(confidence: 0.8)" survives splitting.
func splitSentences(content string) []string {
	var out []string
	runes := []rune(content)
	var b strings.Builder
	flush := func() {
		if strings.TrimSpace(b.String()) != "" {
			out = append(out, b.String())
		}
		b.Reset()
	}
	for i, r := range runes {
		switch {
		case r == ';' || r == '!' || r == '?' || r == '\n':
			flush()
		case r == '.':
			if i > 0 && i+1 < len(runes) && isDigit(runes[i-1]) && isDigit(runes[i+1]) {
				b.WriteRune(r)
			} else {
				flush()
			}
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return out
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// extractConfidenceMarker pulls a trailing "(confidence: N)" annotation
// out of an already lower-cased sentence, returning the sentence
// without it.
func extractConfidenceMarker(sentence string) (string, float64, bool) {
	start := strings.LastIndex(sentence, "(confidence:")
	if start < 0 {
		return sentence, 0, false
	}
	end := strings.Index(sentence[start:], ")")
	if end < 0 {
		return sentence, 0, false
	}
	raw := strings.TrimSpace(sentence[start+len("(confidence:") : start+end])
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		return sentence, 0, false
	}
	return sentence[:start] + sentence[start+end+1:], v, true
}

// stripHedges removes hedge phrases and reports whether any were found.
func stripHedges(s string) (string, bool) {
	hedged := false
	for _, h := range hedgeWords {
		padded := " " + h + " "
		for strings.Contains(s, padded) {
			s = strings.Replace(s, padded, " ", 1)
			hedged = true
		}
	}
	return s, hedged
}

// articles dropped from the front of normalized terms so "the cache"
// and "cache" compare equal.
var articles = []string{"the ", "a ", "an "}

// normalizeTerm lower-cases, collapses whitespace, and strips leading
// articles and trailing punctuation from a subject or value phrase.
func normalizeTerm(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, " ,:")
	for _, art := range articles {
		if strings.HasPrefix(s, art) {
			s = s[len(art):]
			break
		}
	}
	return strings.TrimSpace(s)
}
