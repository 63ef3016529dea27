// Package dataset builds aligned training examples from annotated
// transcripts: character-level tags, per-token label ids, and padded batches.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Utterance is one line-delimited input record. A record without entities is
// an unlabeled/test utterance.
type Utterance struct {
	ID       string             `json:"id"`
	Text     string             `json:"text"`
	Entities []EntityAnnotation `json:"entities,omitempty"`
}

// EntityAnnotation is a half-open character span into the utterance text.
type EntityAnnotation struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

// Valid reports whether the annotation addresses real characters of a text
// with the given length.
func (e EntityAnnotation) Valid(textLen int) bool {
	return e.Start >= 0 && e.End <= textLen && e.Start < e.End
}

// ReadRecords streams utterances from line-delimited JSON. Blank and
// malformed lines are skipped and counted; only read errors are returned.
func ReadRecords(r io.Reader) ([]Utterance, int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		records []Utterance
		skipped int
	)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var u Utterance
		if err := json.Unmarshal([]byte(line), &u); err != nil || u.ID == "" {
			skipped++
			continue
		}
		records = append(records, u)
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scan records: %w", err)
	}
	return records, skipped, nil
}
