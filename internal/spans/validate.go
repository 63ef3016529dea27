package spans

import (
	"strings"

	"github.com/voxredact-ai/voxredact/internal/labels"
)

// Entity is a validated span annotated with its PII flag, ready for output.
type Entity struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
	PII   bool   `json:"pii"`
}

// Spelled-out digits as STT engines emit them.
var digitWords = []string{
	"zero", "one", "two", "three", "four",
	"five", "six", "seven", "eight", "nine",
}

// Validate applies per-type structural plausibility checks to decoded spans
// and annotates survivors with the vocabulary's PII flag. It is strictly a
// precision filter: spans are only dropped, never created or rewritten.
func Validate(text string, decoded []Span, vocab *labels.Vocabulary) []Entity {
	out := make([]Entity, 0, len(decoded))
	for _, s := range decoded {
		if !Plausible(snippet(text, s), s.Label) {
			continue
		}
		out = append(out, Entity{
			Start: s.Start,
			End:   s.End,
			Label: s.Label,
			PII:   vocab.IsPII(s.Label),
		})
	}
	return out
}

// Plausible reports whether the span text looks like its claimed entity type.
// Matching is case-insensitive. Types without a structural signature (names,
// cities, dates) are always accepted; for those the model is trusted.
func Plausible(spanText, label string) bool {
	s := strings.ToLower(spanText)
	switch label {
	case labels.TypePhone:
		return hasDigitSignal(s) || strings.Contains(s, "plus")
	case labels.TypeCreditCard:
		return hasDigitSignal(s)
	case labels.TypeEmail:
		return strings.Contains(s, "@") ||
			strings.Contains(s, " at ") ||
			strings.Contains(s, " dot ")
	default:
		return true
	}
}

// hasDigitSignal reports a digit character or a spelled-out digit word.
func hasDigitSignal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			return true
		}
	}
	for _, w := range digitWords {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// snippet extracts the span's substring, clamping noisy offsets to the text
// bounds instead of panicking on a malformed span.
func snippet(text string, s Span) string {
	start, end := s.Start, s.End
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return ""
	}
	return text[start:end]
}
