package dataset

import "github.com/voxredact-ai/voxredact/internal/labels"

// CharTags holds one BIO tag per character of the source text. It is built
// fresh per utterance and discarded after alignment.
type CharTags []string

// TagChars builds per-character tags from an utterance's annotations. Every
// character starts as O; each valid annotation writes B-<label> at its start
// and I-<label> over the rest of its range. Annotations apply in list order,
// so on overlap the later annotation wins at the contested positions.
// Out-of-range or degenerate spans are dropped, never fatal.
func TagChars(text string, entities []EntityAnnotation) CharTags {
	tags := make(CharTags, len(text))
	for i := range tags {
		tags[i] = labels.Outside
	}
	for _, e := range entities {
		if !e.Valid(len(text)) {
			continue
		}
		tags[e.Start] = "B-" + e.Label
		for i := e.Start + 1; i < e.End; i++ {
			tags[i] = "I-" + e.Label
		}
	}
	return tags
}
