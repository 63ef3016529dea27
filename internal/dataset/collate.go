package dataset

import "github.com/voxredact-ai/voxredact/internal/labels"

// Batch holds the right-padded streams for one collated batch. All rows share
// the length of the longest example in the batch, independent of whatever
// fixed length was used when the examples were built.
type Batch struct {
	IDs           []string
	InputIDs      [][]int64
	AttentionMask [][]int64
	Labels        [][]int
}

// Collate right-pads a batch of variable-length examples to a common length:
// input ids with the tokenizer's pad id, attention masks with 0, labels with
// the ignore sentinel. Collation never truncates; truncation is the
// tokenizer's responsibility upstream.
func Collate(examples []Example, padID int64) Batch {
	maxLen := 0
	for _, ex := range examples {
		if len(ex.InputIDs) > maxLen {
			maxLen = len(ex.InputIDs)
		}
	}

	b := Batch{
		IDs:           make([]string, len(examples)),
		InputIDs:      make([][]int64, len(examples)),
		AttentionMask: make([][]int64, len(examples)),
		Labels:        make([][]int, len(examples)),
	}
	for i, ex := range examples {
		b.IDs[i] = ex.ID
		b.InputIDs[i] = padInt64(ex.InputIDs, padID, maxLen)
		b.AttentionMask[i] = padInt64(ex.AttentionMask, 0, maxLen)
		b.Labels[i] = padInt(ex.Labels, labels.IgnoreID, maxLen)
	}
	return b
}

func padInt64(seq []int64, pad int64, length int) []int64 {
	out := make([]int64, length)
	copy(out, seq)
	for i := len(seq); i < length; i++ {
		out[i] = pad
	}
	return out
}

func padInt(seq []int, pad int, length int) []int {
	out := make([]int, length)
	copy(out, seq)
	for i := len(seq); i < length; i++ {
		out[i] = pad
	}
	return out
}
