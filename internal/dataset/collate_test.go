package dataset

import (
	"testing"

	"github.com/voxredact-ai/voxredact/internal/labels"
)

func TestCollatePadsToLongestExample(t *testing.T) {
	const padID int64 = 7
	examples := []Example{
		{
			ID:            "utt_0001",
			InputIDs:      []int64{2, 11, 3},
			AttentionMask: []int64{1, 1, 1},
			Labels:        []int{labels.IgnoreID, 0, labels.IgnoreID},
		},
		{
			ID:            "utt_0002",
			InputIDs:      []int64{2, 11, 12, 13, 3},
			AttentionMask: []int64{1, 1, 1, 1, 1},
			Labels:        []int{labels.IgnoreID, 0, 1, 2, labels.IgnoreID},
		},
	}

	b := Collate(examples, padID)
	for i := range examples {
		if len(b.InputIDs[i]) != 5 || len(b.AttentionMask[i]) != 5 || len(b.Labels[i]) != 5 {
			t.Fatalf("row %d not padded to batch max 5", i)
		}
	}
	// Short row padded with pad id / 0 / ignore sentinel.
	for i := 3; i < 5; i++ {
		if b.InputIDs[0][i] != padID {
			t.Fatalf("input position %d: expected pad id %d, got %d", i, padID, b.InputIDs[0][i])
		}
		if b.AttentionMask[0][i] != 0 {
			t.Fatalf("mask position %d: expected 0, got %d", i, b.AttentionMask[0][i])
		}
		if b.Labels[0][i] != labels.IgnoreID {
			t.Fatalf("label position %d: expected ignore sentinel, got %d", i, b.Labels[0][i])
		}
	}
	// Long row left untouched.
	for i, want := range examples[1].InputIDs {
		if b.InputIDs[1][i] != want {
			t.Fatalf("long row modified at %d", i)
		}
	}
	if b.IDs[0] != "utt_0001" || b.IDs[1] != "utt_0002" {
		t.Fatalf("ids not carried through: %v", b.IDs)
	}
}

func TestCollateEmptyBatch(t *testing.T) {
	b := Collate(nil, 0)
	if len(b.IDs) != 0 || len(b.InputIDs) != 0 {
		t.Fatalf("empty batch should produce empty streams")
	}
}
