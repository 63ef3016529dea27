// Package redact applies accepted PII spans to transcript text and keeps
// transcript content out of log lines.
package redact

import (
	"fmt"
	"sort"
	"strings"

	"github.com/voxredact-ai/voxredact/internal/spans"
)

// Transcript replaces every PII-flagged entity span in text with a
// [REDACTED_<TYPE>] placeholder and reports whether anything changed.
// Spans are applied right to left so earlier offsets stay valid; non-PII
// entities (cities, coarse locations) are left in place.
func Transcript(text string, entities []spans.Entity) (string, bool) {
	if len(entities) == 0 {
		return text, false
	}

	ordered := append([]spans.Entity(nil), entities...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start > ordered[j].Start })

	out := text
	changed := false
	lastStart := len(text) + 1
	for _, e := range ordered {
		if !e.PII {
			continue
		}
		start, end := e.Start, e.End
		if start < 0 {
			start = 0
		}
		if end > len(out) {
			end = len(out)
		}
		if start >= end || end > lastStart {
			continue
		}
		out = out[:start] + placeholder(e.Label) + out[end:]
		lastStart = start
		changed = true
	}
	return out, changed
}

func placeholder(label string) string {
	return "[REDACTED_" + strings.ToUpper(label) + "]"
}

// Preview returns a log-safe description of transcript text: a short,
// digit-masked head plus the total length. Full transcripts never belong in
// logs; they are the PII this tool exists to remove.
func Preview(text string) string {
	const head = 24
	masked := make([]byte, 0, head)
	for i := 0; i < len(text) && i < head; i++ {
		c := text[i]
		if c >= '0' && c <= '9' {
			c = '#'
		}
		masked = append(masked, c)
	}
	if len(text) > head {
		return fmt.Sprintf("%s… (len=%d)", masked, len(text))
	}
	return fmt.Sprintf("%s (len=%d)", masked, len(text))
}
