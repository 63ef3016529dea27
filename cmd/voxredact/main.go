// voxredact runs the PII model over a file of transcript records and writes
// per-utterance entity predictions, optionally with redacted transcripts.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/voxredact-ai/voxredact/internal/config"
	"github.com/voxredact-ai/voxredact/internal/dataset"
	"github.com/voxredact-ai/voxredact/internal/model"
	"github.com/voxredact-ai/voxredact/internal/pipeline"
	"github.com/voxredact-ai/voxredact/internal/redact"
)

func main() {
	configPath := flag.String("config", "voxredact.yaml", "path to config file")
	inputPath := flag.String("input", "data/dev.jsonl", "line-delimited JSON records to label")
	outputPath := flag.String("output", "out/dev_pred.json", "prediction output file")
	redactedPath := flag.String("redacted", "", "optional output file for redacted transcripts")
	workersFlag := flag.Int("workers", 0, "parallel utterances (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	rt := model.ResolveRuntime(cfg.Model.MaxSessions, cfg.Model.IntraThreads, cfg.Model.InterThreads)
	runner, err := model.Load(cfg.Model.Dir, cfg.Model.SeqLen, rt)
	if err != nil {
		log.Fatalf("load model: %v", err)
	}
	log.Printf("loaded %s (seq_len=%d sessions=%d)", runner.ModelFile(), cfg.Model.SeqLen, rt.Sessions)

	in, err := os.Open(*inputPath)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	records, skipped, err := dataset.ReadRecords(in)
	in.Close()
	if err != nil {
		log.Fatalf("read input: %v", err)
	}
	if skipped > 0 {
		log.Printf("skipped %d malformed input lines", skipped)
	}

	workers := cfg.Workers
	if *workersFlag > 0 {
		workers = *workersFlag
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := pipeline.New(runner, runner.Vocab())
	preds, failed, repairs := p.RunAll(records, workers)
	if failed > 0 {
		log.Printf("%d of %d utterances failed and were emitted empty", failed, len(records))
	}
	if cfg.Decode.Strict && repairs > 0 {
		log.Printf("strict decode: repaired %d malformed BIO transitions", repairs)
	}

	if err := writeJSON(*outputPath, preds); err != nil {
		log.Fatalf("write output: %v", err)
	}
	log.Printf("wrote predictions for %d utterances to %s", len(preds), *outputPath)

	if *redactedPath != "" {
		if err := writeRedacted(*redactedPath, records, preds); err != nil {
			log.Fatalf("write redacted transcripts: %v", err)
		}
		log.Printf("wrote redacted transcripts to %s", *redactedPath)
	}
}

func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeRedacted(path string, records []dataset.Utterance, preds pipeline.Predictions) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, u := range records {
		text, _ := redact.Transcript(u.Text, preds[u.ID])
		if err := enc.Encode(dataset.Utterance{ID: u.ID, Text: text}); err != nil {
			return err
		}
	}
	return w.Flush()
}
