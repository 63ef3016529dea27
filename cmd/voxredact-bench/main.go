// voxredact-bench measures single-utterance inference latency of the PII
// model through the full tokenize → run → decode path.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/voxredact-ai/voxredact/internal/config"
	"github.com/voxredact-ai/voxredact/internal/dataset"
	"github.com/voxredact-ai/voxredact/internal/model"
	"github.com/voxredact-ai/voxredact/internal/pipeline"
)

func main() {
	cfgPath := flag.String("config", "", "path to config yaml (required)")
	n := flag.Int("n", 200, "number of iterations")
	text := flag.String("text", "my email id is j dot smith at example dot com and my number is nine eight seven six five four three two one zero", "transcript to label")
	flag.Parse()

	if *cfgPath == "" {
		log.Fatalf("config flag is required")
	}

	// Force a single session to avoid queueing noise in the benchmark.
	if err := os.Setenv("VOXREDACT_MAX_SESSIONS", "1"); err != nil {
		log.Fatalf("set VOXREDACT_MAX_SESSIONS: %v", err)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	rt := model.ResolveRuntime(cfg.Model.MaxSessions, cfg.Model.IntraThreads, cfg.Model.InterThreads)
	runner, err := model.Load(cfg.Model.Dir, cfg.Model.SeqLen, rt)
	if err != nil {
		log.Fatalf("load model: %v", err)
	}

	p := pipeline.New(runner, runner.Vocab())
	u := dataset.Utterance{ID: "bench", Text: *text}

	for i := 0; i < 5; i++ {
		if res := p.Run(u); res.Err != nil {
			log.Fatalf("warmup failed: %v", res.Err)
		}
	}

	if *n <= 0 {
		*n = 1
	}
	durations := make([]time.Duration, 0, *n)
	for i := 0; i < *n; i++ {
		start := time.Now()
		if res := p.Run(u); res.Err != nil {
			log.Fatalf("predict failed: %v", res.Err)
		}
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}
	avg := float64(total.Microseconds()) / 1000.0 / float64(len(durations))
	p50 := float64(durations[len(durations)/2].Microseconds()) / 1000.0
	p95 := float64(durations[int(float64(len(durations))*0.95)].Microseconds()) / 1000.0

	fmt.Printf("bench: n=%d avg_ms=%.2f p50_ms=%.2f p95_ms=%.2f seq_len=%d model=%s\n",
		len(durations), avg, p50, p95, cfg.Model.SeqLen, runner.ModelFile())
}
