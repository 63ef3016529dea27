// voxredact-dataset converts annotated transcript records into aligned
// training examples: token ids, attention mask, and per-token label ids with
// the ignore sentinel on structural tokens.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/voxredact-ai/voxredact/internal/config"
	"github.com/voxredact-ai/voxredact/internal/dataset"
	"github.com/voxredact-ai/voxredact/internal/labels"
	"github.com/voxredact-ai/voxredact/internal/tokenize"
)

func main() {
	configPath := flag.String("config", "voxredact.yaml", "path to config file")
	inputPath := flag.String("input", "data/train.jsonl", "annotated records to align")
	outputPath := flag.String("output", "out/train_examples.jsonl", "aligned example output file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	tok, err := tokenize.LoadDir(cfg.Model.Dir)
	if err != nil {
		log.Fatalf("load tokenizer: %v", err)
	}

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

	builder := dataset.NewBuilder(tok, labels.New(), cfg.Dataset.MaxLength, dataset.Policy(cfg.Dataset.Alignment))

	if dir := filepath.Dir(*outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("create output dir: %v", err)
		}
	}
	f, err := os.Create(*outputPath)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, u := range records {
		if err := enc.Encode(builder.Build(u)); err != nil {
			log.Fatalf("write example: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("flush output: %v", err)
	}

	log.Printf("wrote %d aligned examples to %s (max_length=%d alignment=%s)",
		len(records), *outputPath, cfg.Dataset.MaxLength, cfg.Dataset.Alignment)
}
