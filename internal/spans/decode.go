// Package spans reconstructs character-level entity spans from per-token
// model predictions and filters out structurally implausible ones.
package spans

import (
	"strings"

	"github.com/voxredact-ai/voxredact/internal/labels"
	"github.com/voxredact-ai/voxredact/internal/tokenize"
)

// Span is a decoded half-open character range with its entity type,
// produced only at decode time.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

// Decoder is the left-to-right BIO merge state machine. It is stateless
// between calls and safe for concurrent use.
type Decoder struct {
	vocab *labels.Vocabulary
}

// NewDecoder builds a decoder over the given label vocabulary.
func NewDecoder(vocab *labels.Vocabulary) *Decoder {
	return &Decoder{vocab: vocab}
}

// Decode walks predicted label ids and their token offsets and merges them
// into ordered, non-overlapping spans. Structural tokens never contribute.
// An I tag with no matching open span is repaired by treating it as B; the
// returned count reports how many such repairs happened, so callers running
// in strict mode can surface malformed model output. Decoding never fails.
func (d *Decoder) Decode(ids []int, offsets []tokenize.Offset) ([]Span, int) {
	var (
		out     []Span
		open    *Span
		repairs int
	)
	flush := func() {
		if open != nil {
			out = append(out, *open)
			open = nil
		}
	}

	for i, id := range ids {
		if i >= len(offsets) {
			break
		}
		o := offsets[i]
		if o.Structural() {
			continue
		}

		label := d.vocab.Label(id)
		if label == labels.Outside {
			flush()
			continue
		}

		prefix, entityType := splitTag(label)
		if entityType == "" {
			flush()
			continue
		}

		switch {
		case prefix == "B":
			flush()
			open = &Span{Start: o.Start, End: o.End, Label: entityType}
		case open != nil && open.Label == entityType:
			open.End = o.End
		default:
			// I without a matching open span: recover by opening a new one.
			repairs++
			flush()
			open = &Span{Start: o.Start, End: o.End, Label: entityType}
		}
	}
	flush()
	return out, repairs
}

// splitTag splits "B-PHONE" into ("B", "PHONE"). A tag without a prefix
// yields an empty prefix and the whole tag as type.
func splitTag(tag string) (string, string) {
	prefix, entityType, found := strings.Cut(tag, "-")
	if !found {
		return "", tag
	}
	return prefix, entityType
}
