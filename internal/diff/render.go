package diff

import (
	"fmt"
	"strings"

	"github.com/Kastalien-Research/thoughtbox-sub003/internal/thought"
)

// Rendering is presentation only: neither renderer mutates or reorders
// the computed diff.

const splitColumnWidth = 38

// RenderTimeline renders the diff as one linear merged timeline:
// the fork point first, then each side's additions in branch order.
func RenderTimeline(d BranchDiff) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Branch diff: %s ↔ %s\n\n", labelOr(d.BranchA, "A"), labelOr(d.BranchB, "B"))
	if d.CommonAncestorHash == thought.GenesisHash {
		b.WriteString("Fork point: none (disjoint branches)\n\n")
	} else {
		fmt.Fprintf(&b, "Fork point: %s\n\n", shortHash(d.CommonAncestorHash))
	}

	fmt.Fprintf(&b, "## Only in %s (%d)\n\n", labelOr(d.BranchA, "A"), len(d.AddedA))
	writeTimelineEntries(&b, d.AddedA)

	fmt.Fprintf(&b, "## Only in %s (%d)\n\n", labelOr(d.BranchB, "B"), len(d.AddedB))
	writeTimelineEntries(&b, d.AddedB)

	if len(d.Modified) > 0 {
		fmt.Fprintf(&b, "## Annotation changes (%d)\n\n", len(d.Modified))
		for _, m := range d.Modified {
			fmt.Fprintf(&b, "- %s: %s — %s\n", m.ThoughtID, m.Field, m.Note)
		}
	}

	return b.String()
}

// RenderSplitDiff renders the diff side by side, one row per position
// past the fork point.
func RenderSplitDiff(d BranchDiff) string {
	var b strings.Builder

	left := labelOr(d.BranchA, "A")
	right := labelOr(d.BranchB, "B")
	fmt.Fprintf(&b, "%s │ %s\n", pad(left, splitColumnWidth), right)
	b.WriteString(strings.Repeat("─", splitColumnWidth) + "─┼─" + strings.Repeat("─", splitColumnWidth) + "\n")

	rows := len(d.AddedA)
	if len(d.AddedB) > rows {
		rows = len(d.AddedB)
	}
	for i := 0; i < rows; i++ {
		var l, r string
		if i < len(d.AddedA) {
			l = entryLine(d.AddedA[i])
		}
		if i < len(d.AddedB) {
			r = entryLine(d.AddedB[i])
		}
		fmt.Fprintf(&b, "%s │ %s\n", pad(l, splitColumnWidth), r)
	}

	return b.String()
}

func writeTimelineEntries(b *strings.Builder, thoughts []thought.Thought) {
	if len(thoughts) == 0 {
		b.WriteString("(none)\n\n")
		return
	}
	for _, t := range thoughts {
		who := ""
		if t.AgentName != "" {
			who = " [" + t.AgentName + "]"
		} else if t.AgentID != "" {
			who = " [" + t.AgentID + "]"
		}
		fmt.Fprintf(b, "- %s%s %s\n", shortHash(t.Hash), who, truncate(t.Content, 100))
	}
	b.WriteString("\n")
}

func entryLine(t thought.Thought) string {
	return shortHash(t.Hash) + " " + truncate(t.Content, splitColumnWidth-10)
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}

func shortHash(h string) string {
	if len(h) <= 8 {
		return h
	}
	return h[:8]
}

// truncate and pad measure in runes so multibyte content is never cut
// mid-rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
