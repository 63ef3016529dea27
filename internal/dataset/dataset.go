package dataset

import (
	"github.com/voxredact-ai/voxredact/internal/labels"
	"github.com/voxredact-ai/voxredact/internal/tokenize"
)

// Example is one aligned training example, ready for collation or export.
type Example struct {
	ID            string            `json:"id"`
	Text          string            `json:"text"`
	InputIDs      []int64           `json:"input_ids"`
	AttentionMask []int64           `json:"attention_mask"`
	Labels        []int             `json:"labels"`
	Offsets       []tokenize.Offset `json:"offsets"`
}

// Builder turns raw utterances into aligned training examples. Building is
// pure per utterance; a single Builder is safe for concurrent use as long as
// its encoder is.
type Builder struct {
	enc    tokenize.Encoder
	vocab  *labels.Vocabulary
	maxLen int
	policy Policy
}

// NewBuilder wires the tokenizer, vocabulary, fixed encode length, and
// alignment policy together.
func NewBuilder(enc tokenize.Encoder, vocab *labels.Vocabulary, maxLen int, policy Policy) *Builder {
	if maxLen <= 0 {
		maxLen = 128
	}
	if policy == "" {
		policy = PolicyFirstChar
	}
	return &Builder{enc: enc, vocab: vocab, maxLen: maxLen, policy: policy}
}

// Build tags the utterance's characters, tokenizes with offsets, and aligns
// one label id per token. Invalid annotations silently contribute nothing.
func (b *Builder) Build(u Utterance) Example {
	tags := TagChars(u.Text, u.Entities)
	enc := b.enc.Encode(u.Text, b.maxLen)
	return Example{
		ID:            u.ID,
		Text:          u.Text,
		InputIDs:      enc.InputIDs,
		AttentionMask: enc.AttentionMask,
		Labels:        AlignLabels(tags, enc.Offsets, b.vocab, b.policy),
		Offsets:       enc.Offsets,
	}
}
