package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/voxredact-ai/voxredact/internal/dataset"
	"github.com/voxredact-ai/voxredact/internal/labels"
	"github.com/voxredact-ai/voxredact/internal/tokenize"
)

// goldPredictor plays a perfect model: it tokenizes by whitespace and emits
// the label ids a CharTagger+aligner would produce for the gold annotations.
type goldPredictor struct {
	vocab    *labels.Vocabulary
	entities map[string][]dataset.EntityAnnotation
}

func (g *goldPredictor) PredictIDs(text string) ([]int, []tokenize.Offset, error) {
	offsets := []tokenize.Offset{{}} // leading structural token
	start := -1
	flush := func(end int) {
		if start >= 0 {
			offsets = append(offsets, tokenize.Offset{Start: start, End: end})
			start = -1
		}
	}
	for i := 0; i < len(text); i++ {
		if text[i] == ' ' {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(text))
	offsets = append(offsets, tokenize.Offset{}) // trailing structural token

	tags := dataset.TagChars(text, g.entities[text])
	ids := dataset.AlignLabels(tags, offsets, g.vocab, dataset.PolicyFirstChar)
	return ids, offsets, nil
}

func TestEndToEndEmailRoundTrip(t *testing.T) {
	vocab := labels.New()
	text := "my email id is j dot smith at example dot com"
	email := "j dot smith at example dot com"
	start := strings.Index(text, email)
	ann := dataset.EntityAnnotation{Start: start, End: start + len(email), Label: labels.TypeEmail}

	p := New(&goldPredictor{
		vocab:    vocab,
		entities: map[string][]dataset.EntityAnnotation{text: {ann}},
	}, vocab)

	res := p.Run(dataset.Utterance{ID: "utt_0001", Text: text})
	if res.Err != nil {
		t.Fatalf("run: %v", res.Err)
	}
	if len(res.Entities) != 1 {
		t.Fatalf("expected exactly 1 entity, got %v", res.Entities)
	}
	got := res.Entities[0]
	if got.Label != labels.TypeEmail || !got.PII {
		t.Fatalf("expected PII EMAIL entity, got %+v", got)
	}
	if got.Start != ann.Start || got.End != ann.End {
		t.Fatalf("round trip lost the span: annotated (%d,%d), decoded (%d,%d)",
			ann.Start, ann.End, got.Start, got.End)
	}
	if res.Repairs != 0 {
		t.Fatalf("gold labels should decode without repairs, got %d", res.Repairs)
	}
}

func TestRoundTripAcrossEntityTypes(t *testing.T) {
	vocab := labels.New()
	cases := []struct {
		text  string
		label string
	}{
		{"call me on nine eight seven six five", labels.TypePhone},
		{"my card is four two four two", labels.TypeCreditCard},
		{"i was born on twelve january", labels.TypeDate},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			// Annotate everything after the first two words.
			parts := strings.SplitN(tc.text, " ", 3)
			start := len(parts[0]) + 1 + len(parts[1]) + 1
			ann := dataset.EntityAnnotation{Start: start, End: len(tc.text), Label: tc.label}

			p := New(&goldPredictor{
				vocab:    vocab,
				entities: map[string][]dataset.EntityAnnotation{tc.text: {ann}},
			}, vocab)
			res := p.Run(dataset.Utterance{ID: "utt", Text: tc.text})
			if res.Err != nil {
				t.Fatalf("run: %v", res.Err)
			}
			if len(res.Entities) != 1 {
				t.Fatalf("expected 1 entity, got %v", res.Entities)
			}
			if res.Entities[0].Start != ann.Start || res.Entities[0].End != ann.End {
				t.Fatalf("span mismatch: annotated (%d,%d), got (%d,%d)",
					ann.Start, ann.End, res.Entities[0].Start, res.Entities[0].End)
			}
		})
	}
}

type flakyPredictor struct {
	failOn string
	vocab  *labels.Vocabulary
}

func (f *flakyPredictor) PredictIDs(text string) ([]int, []tokenize.Offset, error) {
	if text == f.failOn {
		return nil, nil, errors.New("model exploded")
	}
	if strings.HasPrefix(text, "panic") {
		panic("tokenizer bug")
	}
	return []int{f.vocab.OutsideID()}, []tokenize.Offset{{Start: 0, End: len(text)}}, nil
}

func TestRunAllIsolatesFailures(t *testing.T) {
	vocab := labels.New()
	p := New(&flakyPredictor{failOn: "bad", vocab: vocab}, vocab)

	utts := []dataset.Utterance{
		{ID: "utt_0001", Text: "fine"},
		{ID: "utt_0002", Text: "bad"},
		{ID: "utt_0003", Text: "panic here"},
		{ID: "utt_0004", Text: "also fine"},
	}
	preds, failed, _ := p.RunAll(utts, 2)

	if failed != 2 {
		t.Fatalf("expected 2 failures, got %d", failed)
	}
	if len(preds) != 4 {
		t.Fatalf("every utterance must appear in the output, got %d", len(preds))
	}
	for _, u := range utts {
		if _, ok := preds[u.ID]; !ok {
			t.Fatalf("missing prediction entry for %s", u.ID)
		}
	}
	if preds["utt_0002"] == nil || len(preds["utt_0002"]) != 0 {
		t.Fatalf("failed utterance should carry an empty entity list")
	}
}

func TestRunAllEmptyInput(t *testing.T) {
	vocab := labels.New()
	p := New(&flakyPredictor{vocab: vocab}, vocab)
	preds, failed, repairs := p.RunAll(nil, 4)
	if len(preds) != 0 || failed != 0 || repairs != 0 {
		t.Fatalf("unexpected output for empty input: %v %d %d", preds, failed, repairs)
	}
}
