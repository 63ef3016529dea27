// Package tokenize provides an offset-preserving WordPiece tokenizer
// compatible with the DistilBERT vocabularies the PII model is trained with.
package tokenize

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Offset is a half-open character range into the source text. A zero-width
// offset (Start == End) marks a structural token (CLS, SEP, PAD) that carries
// no text content.
type Offset struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Structural reports whether the offset belongs to a structural token.
func (o Offset) Structural() bool {
	return o.Start == o.End
}

// Encoding is the tokenizer output for one utterance: ids, mask, and one
// offset per token, all of identical length.
type Encoding struct {
	InputIDs      []int64  `json:"input_ids"`
	AttentionMask []int64  `json:"attention_mask"`
	Offsets       []Offset `json:"offsets"`
}

// Encoder is the tokenizer contract the alignment pipeline depends on.
type Encoder interface {
	Encode(text string, maxLen int) Encoding
}

// WordPiece is a greedy longest-match-first sub-word tokenizer over a fixed
// vocabulary, with exact character offsets for every non-structural token.
type WordPiece struct {
	vocab        map[string]int64
	lowerCase    bool
	continuation string
	clsID        int64
	sepID        int64
	padID        int64
	unkID        int64
}

// Load builds a WordPiece tokenizer from a vocab.txt file (one token per
// line, line number = id).
func Load(path string) (*WordPiece, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	sc := bufio.NewScanner(f)
	var idx int64
	for sc.Scan() {
		token := strings.TrimSpace(sc.Text())
		if token == "" {
			continue
		}
		vocab[token] = idx
		idx++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan vocab: %w", err)
	}
	return fromVocab(vocab), nil
}

// LoadDir probes a model directory for tokenizer assets: vocab.txt first,
// then the vocab embedded in tokenizer.json.
func LoadDir(dir string) (*WordPiece, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("tokenizer dir is empty")
	}
	for _, path := range []string{
		filepath.Join(dir, "vocab.txt"),
		filepath.Join(dir, "tokenizer", "vocab.txt"),
	} {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	for _, path := range []string{
		filepath.Join(dir, "tokenizer.json"),
		filepath.Join(dir, "tokenizer", "tokenizer.json"),
	} {
		if _, err := os.Stat(path); err == nil {
			return loadFromJSON(path)
		}
	}
	return nil, fmt.Errorf("tokenizer assets not found in %s (vocab.txt or tokenizer.json)", dir)
}

func loadFromJSON(path string) (*WordPiece, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tokenizer.json: %w", err)
	}
	var raw struct {
		Model struct {
			Vocab map[string]int64 `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode tokenizer.json: %w", err)
	}
	if len(raw.Model.Vocab) == 0 {
		return nil, fmt.Errorf("tokenizer.json missing vocab")
	}
	return fromVocab(raw.Model.Vocab), nil
}

func fromVocab(vocab map[string]int64) *WordPiece {
	return &WordPiece{
		vocab:        vocab,
		lowerCase:    true,
		continuation: "##",
		clsID:        vocab["[CLS]"],
		sepID:        vocab["[SEP]"],
		padID:        vocab["[PAD]"],
		unkID:        vocab["[UNK]"],
	}
}

// PadID returns the vocabulary's padding id, used by the batch collator.
func (t *WordPiece) PadID() int64 {
	return t.padID
}

// Encode tokenizes text to exactly maxLen positions: CLS, sub-word tokens,
// SEP, then PAD. Tokens beyond maxLen-2 are truncated from the tail, keeping
// the head of the utterance. Structural tokens carry a zero-width offset.
func (t *WordPiece) Encode(text string, maxLen int) Encoding {
	if maxLen <= 0 {
		return Encoding{}
	}

	ids := make([]int64, 0, maxLen)
	offsets := make([]Offset, 0, maxLen)
	ids = append(ids, t.clsID)
	offsets = append(offsets, Offset{})

	for _, w := range splitWords(text) {
		if len(ids) >= maxLen-1 {
			break
		}
		word := w.text
		if t.lowerCase {
			word = strings.ToLower(word)
		}
		for _, p := range t.pieces(word) {
			if len(ids) >= maxLen-1 {
				break
			}
			ids = append(ids, p.id)
			offsets = append(offsets, Offset{Start: w.start + p.start, End: w.start + p.end})
		}
	}

	ids = append(ids, t.sepID)
	offsets = append(offsets, Offset{})
	if len(ids) > maxLen {
		ids = ids[:maxLen]
		offsets = offsets[:maxLen]
	}

	attn := make([]int64, maxLen)
	for i := 0; i < len(ids); i++ {
		attn[i] = 1
	}
	for len(ids) < maxLen {
		ids = append(ids, t.padID)
		offsets = append(offsets, Offset{})
	}

	return Encoding{InputIDs: ids, AttentionMask: attn, Offsets: offsets}
}

type word struct {
	text  string
	start int
	end   int
}

func splitWords(text string) []word {
	if text == "" {
		return nil
	}
	var words []word
	start := -1
	for idx, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, word{text: text[start:idx], start: start, end: idx})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = idx
		}
	}
	if start >= 0 {
		words = append(words, word{text: text[start:], start: start, end: len(text)})
	}
	return words
}

type piece struct {
	id    int64
	start int
	end   int
}

// pieces splits one word into sub-word pieces by greedy longest match.
// A word with no match at some position becomes a single UNK spanning the
// whole word, so its offset still covers real text.
func (t *WordPiece) pieces(token string) []piece {
	if id, ok := t.vocab[token]; ok {
		return []piece{{id: id, start: 0, end: len(token)}}
	}

	var out []piece
	start := 0
	for start < len(token) {
		end := len(token)
		matched := false
		for end > start {
			sub := token[start:end]
			if start > 0 {
				sub = t.continuation + sub
			}
			if id, ok := t.vocab[sub]; ok {
				out = append(out, piece{id: id, start: start, end: end})
				start = end
				matched = true
				break
			}
			end--
		}
		if !matched {
			return []piece{{id: t.unkID, start: 0, end: len(token)}}
		}
	}
	if len(out) == 0 {
		return []piece{{id: t.unkID, start: 0, end: len(token)}}
	}
	return out
}
