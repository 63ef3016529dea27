package dataset

import (
	"github.com/voxredact-ai/voxredact/internal/labels"
	"github.com/voxredact-ai/voxredact/internal/tokenize"
)

// Policy selects which characters of a multi-character sub-word token decide
// its label during alignment.
type Policy string

const (
	// PolicyFirstChar labels a token by the tag of its first character.
	PolicyFirstChar Policy = "first_char"
	// PolicyMajority labels a token by the most frequent tag across its
	// character range, earliest tag winning ties.
	PolicyMajority Policy = "majority"
)

// AlignLabels projects character tags onto a token offset stream, producing
// one label id per token. Structural tokens get the ignore sentinel; tokens
// whose offsets fall beyond the tag array are labeled O, as are tokens whose
// tag string is not in the vocabulary.
func AlignLabels(tags CharTags, offsets []tokenize.Offset, vocab *labels.Vocabulary, policy Policy) []int {
	out := make([]int, len(offsets))
	for i, o := range offsets {
		switch {
		case o.Structural():
			out[i] = labels.IgnoreID
		case o.Start < len(tags):
			out[i] = vocab.ID(tokenTag(tags, o, policy))
		default:
			out[i] = vocab.OutsideID()
		}
	}
	return out
}

func tokenTag(tags CharTags, o tokenize.Offset, policy Policy) string {
	if policy != PolicyMajority {
		return tags[o.Start]
	}

	end := o.End
	if end > len(tags) {
		end = len(tags)
	}
	counts := make(map[string]int, 2)
	order := make([]string, 0, 2)
	for i := o.Start; i < end; i++ {
		if counts[tags[i]] == 0 {
			order = append(order, tags[i])
		}
		counts[tags[i]]++
	}
	best := tags[o.Start]
	bestCount := 0
	for _, tag := range order {
		if counts[tag] > bestCount {
			best = tag
			bestCount = counts[tag]
		}
	}
	return best
}
