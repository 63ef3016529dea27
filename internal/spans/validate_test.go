package spans

import (
	"testing"

	"github.com/voxredact-ai/voxredact/internal/labels"
)

func TestPlausible(t *testing.T) {
	cases := []struct {
		name     string
		spanText string
		label    string
		want     bool
	}{
		{"spelled digits credit card", "four two four two", labels.TypeCreditCard, true},
		{"name as phone", "john smith", labels.TypePhone, false},
		{"digits as phone", "call 98765", labels.TypePhone, true},
		{"plus prefix phone", "plus nine one", labels.TypePhone, true},
		{"email with at word", "j dot smith at example dot com", labels.TypeEmail, true},
		{"email with symbol", "j.smith@example.com", labels.TypeEmail, true},
		{"word salad email", "just some words", labels.TypeEmail, false},
		{"date always accepted", "first of january", labels.TypeDate, true},
		{"name always accepted", "john smith", labels.TypePersonName, true},
		{"city always accepted", "mumbai", labels.TypeCity, true},
		{"credit card without digits", "my card", labels.TypeCreditCard, false},
		{"case insensitive", "FOUR TWO", labels.TypeCreditCard, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Plausible(tc.spanText, tc.label); got != tc.want {
				t.Fatalf("Plausible(%q, %s): expected %v, got %v", tc.spanText, tc.label, tc.want, got)
			}
		})
	}
}

func TestValidateFiltersAndAnnotates(t *testing.T) {
	vocab := labels.New()
	text := "this is john smith living in mumbai"
	nameStart := len("this is ")
	cityStart := len("this is john smith living in ")
	decoded := []Span{
		{Start: nameStart, End: nameStart + len("john smith"), Label: labels.TypePersonName},
		{Start: cityStart, End: len(text), Label: labels.TypeCity},
		{Start: nameStart, End: nameStart + len("john smith"), Label: labels.TypePhone},
	}

	got := Validate(text, decoded, vocab)
	if len(got) != 2 {
		t.Fatalf("expected 2 surviving entities, got %d: %v", len(got), got)
	}
	if got[0].Label != labels.TypePersonName || !got[0].PII {
		t.Fatalf("person name should survive with pii=true: %+v", got[0])
	}
	if got[1].Label != labels.TypeCity || got[1].PII {
		t.Fatalf("city should survive with pii=false: %+v", got[1])
	}
}

func TestValidateClampsMalformedOffsets(t *testing.T) {
	vocab := labels.New()
	text := "nine eight"
	decoded := []Span{{Start: -3, End: 500, Label: labels.TypePhone}}

	got := Validate(text, decoded, vocab)
	if len(got) != 1 {
		t.Fatalf("clamped span should still validate: %v", got)
	}
}

func TestValidateEmptyInput(t *testing.T) {
	vocab := labels.New()
	got := Validate("", nil, vocab)
	if len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
}
