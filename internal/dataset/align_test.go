package dataset

import (
	"testing"

	"github.com/voxredact-ai/voxredact/internal/labels"
	"github.com/voxredact-ai/voxredact/internal/tokenize"
)

func TestAlignLabelsStructuralTokensGetIgnoreSentinel(t *testing.T) {
	vocab := labels.New()
	tags := TagChars("hi", nil)
	offsets := []tokenize.Offset{{Start: 0, End: 0}, {Start: 0, End: 2}, {Start: 2, End: 2}}

	got := AlignLabels(tags, offsets, vocab, PolicyFirstChar)
	if got[0] != labels.IgnoreID {
		t.Fatalf("leading structural token should get ignore sentinel, got %d", got[0])
	}
	if got[2] != labels.IgnoreID {
		t.Fatalf("trailing structural token should get ignore sentinel, got %d", got[2])
	}
	if got[1] != vocab.OutsideID() {
		t.Fatalf("untagged token should be O, got %d", got[1])
	}
}

func TestAlignLabelsFirstCharWins(t *testing.T) {
	vocab := labels.New()
	text := "x 9876"
	tags := TagChars(text, []EntityAnnotation{{Start: 2, End: 6, Label: "PHONE"}})

	offsets := []tokenize.Offset{
		{Start: 0, End: 1}, // "x" -> O
		{Start: 2, End: 4}, // "98" -> B-PHONE (first char tag)
		{Start: 4, End: 6}, // "76" -> I-PHONE
	}
	got := AlignLabels(tags, offsets, vocab, PolicyFirstChar)
	want := []int{vocab.OutsideID(), vocab.ID("B-PHONE"), vocab.ID("I-PHONE")}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected id %d, got %d", i, want[i], got[i])
		}
	}
}

func TestAlignLabelsOutOfRangeOffsetIsOutside(t *testing.T) {
	vocab := labels.New()
	tags := TagChars("hi", nil)
	offsets := []tokenize.Offset{{Start: 10, End: 12}}

	got := AlignLabels(tags, offsets, vocab, PolicyFirstChar)
	if got[0] != vocab.OutsideID() {
		t.Fatalf("out-of-range token should be O, got %d", got[0])
	}
}

func TestAlignLabelsMajorityPolicy(t *testing.T) {
	vocab := labels.New()
	text := "ab1234"
	tags := TagChars(text, []EntityAnnotation{{Start: 2, End: 6, Label: "PHONE"}})

	// Token covering "ab1234": first char says O, but two thirds of the
	// token's characters sit inside the PHONE span.
	offsets := []tokenize.Offset{{Start: 0, End: 6}}

	first := AlignLabels(tags, offsets, vocab, PolicyFirstChar)
	if first[0] != vocab.OutsideID() {
		t.Fatalf("first_char should label the token O, got %d", first[0])
	}
	majority := AlignLabels(tags, offsets, vocab, PolicyMajority)
	if majority[0] != vocab.ID("I-PHONE") {
		t.Fatalf("majority should label the token I-PHONE, got %d", majority[0])
	}
}

func TestAlignLabelsUnknownTagFallsBackToOutside(t *testing.T) {
	vocab := labels.New()
	tags := CharTags{"B-UNSEEN_TYPE", "I-UNSEEN_TYPE"}
	offsets := []tokenize.Offset{{Start: 0, End: 2}}

	got := AlignLabels(tags, offsets, vocab, PolicyFirstChar)
	if got[0] != vocab.OutsideID() {
		t.Fatalf("unknown tag should map to O id, got %d", got[0])
	}
}
