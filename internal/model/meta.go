package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// meta carries what the runner needs from the model directory beyond the
// weights: the ordered label list and whether the graph takes token type ids.
type meta struct {
	Labels            []string
	RequiresTokenType bool
}

// loadMeta reads the label map from, in order of preference, label_map.json
// (array or id-keyed map), config.json's id2label, or labels.yaml. The
// token-type requirement comes from config.json's type_vocab_size.
func loadMeta(dir string) (meta, error) {
	var m meta

	if data, err := os.ReadFile(filepath.Join(dir, "config.json")); err == nil {
		var cfg struct {
			ID2Label      map[string]string `json:"id2label"`
			TypeVocabSize int               `json:"type_vocab_size"`
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return m, fmt.Errorf("decode config.json: %w", err)
		}
		m.Labels = labelsFromIDMap(cfg.ID2Label)
		m.RequiresTokenType = cfg.TypeVocabSize > 0
	}

	if data, err := os.ReadFile(filepath.Join(dir, "label_map.json")); err == nil {
		var list []string
		if err := json.Unmarshal(data, &list); err == nil && len(list) > 0 {
			m.Labels = list
		} else {
			var idMap map[string]string
			if err := json.Unmarshal(data, &idMap); err != nil {
				return m, fmt.Errorf("decode label_map.json: %w", err)
			}
			if mapped := labelsFromIDMap(idMap); len(mapped) > 0 {
				m.Labels = mapped
			}
		}
	}

	if len(m.Labels) == 0 {
		if data, err := os.ReadFile(filepath.Join(dir, "labels.yaml")); err == nil {
			var wrapper struct {
				Labels []string `yaml:"labels"`
			}
			if err := yaml.Unmarshal(data, &wrapper); err != nil {
				return m, fmt.Errorf("decode labels.yaml: %w", err)
			}
			m.Labels = wrapper.Labels
		}
	}
	return m, nil
}

// labelsFromIDMap converts {"0":"O","1":"B-PHONE",...} into an ordered list.
// Gaps stay empty strings; non-numeric keys are skipped.
func labelsFromIDMap(id2label map[string]string) []string {
	if len(id2label) == 0 {
		return nil
	}
	type entry struct {
		id    int
		label string
	}
	entries := make([]entry, 0, len(id2label))
	maxID := -1
	for k, v := range id2label {
		id, err := strconv.Atoi(k)
		if err != nil || id < 0 {
			continue
		}
		entries = append(entries, entry{id: id, label: v})
		if id > maxID {
			maxID = id
		}
	}
	if maxID < 0 {
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })
	out := make([]string, maxID+1)
	for _, e := range entries {
		out[e.id] = e.label
	}
	return out
}
