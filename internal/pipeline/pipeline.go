// Package pipeline runs the inference-side flow per utterance: model
// prediction, BIO span decoding, and structural validation. Utterances are
// independent, so batch runs fan out across workers.
package pipeline

import (
	"fmt"
	"log"
	"sync"

	"github.com/voxredact-ai/voxredact/internal/dataset"
	"github.com/voxredact-ai/voxredact/internal/labels"
	"github.com/voxredact-ai/voxredact/internal/spans"
	"github.com/voxredact-ai/voxredact/internal/tokenize"
)

// Predictor yields per-token arg-max label ids and their character offsets
// for one utterance. The ONNX runner implements it; tests use fakes.
type Predictor interface {
	PredictIDs(text string) ([]int, []tokenize.Offset, error)
}

// Pipeline wires the predictor, decoder, and validator together.
type Pipeline struct {
	predictor Predictor
	vocab     *labels.Vocabulary
	decoder   *spans.Decoder
}

// Result is the outcome for one utterance. Entities is never nil for a
// successful run, so ids without findings still appear in the output map.
type Result struct {
	Entities []spans.Entity
	Repairs  int
	Err      error
}

// Predictions maps utterance id to its accepted entity spans.
type Predictions map[string][]spans.Entity

// New builds a pipeline over a shared, read-only vocabulary.
func New(predictor Predictor, vocab *labels.Vocabulary) *Pipeline {
	return &Pipeline{
		predictor: predictor,
		vocab:     vocab,
		decoder:   spans.NewDecoder(vocab),
	}
}

// Run processes one utterance: predict, decode, validate. A panic anywhere
// in the per-utterance flow is converted into that utterance's error so one
// malformed example never takes down a batch.
func (p *Pipeline) Run(u dataset.Utterance) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("utterance %s: panic: %v", u.ID, r)}
		}
	}()

	ids, offsets, err := p.predictor.PredictIDs(u.Text)
	if err != nil {
		return Result{Err: fmt.Errorf("utterance %s: %w", u.ID, err)}
	}
	decoded, repairs := p.decoder.Decode(ids, offsets)
	return Result{
		Entities: spans.Validate(u.Text, decoded, p.vocab),
		Repairs:  repairs,
	}
}

// RunAll fans utterances across workers and collects predictions keyed by
// utterance id. Failed utterances are logged, counted, and emitted with an
// empty entity list; they never abort the run. The total count of repaired
// BIO transitions is returned for strict-mode reporting.
func (p *Pipeline) RunAll(utterances []dataset.Utterance, workers int) (Predictions, int, int) {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(utterances) {
		workers = len(utterances)
	}

	jobs := make(chan dataset.Utterance)
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		out     = make(Predictions, len(utterances))
		failed  int
		repairs int
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				res := p.Run(u)
				mu.Lock()
				if res.Err != nil {
					log.Printf("predict failed: %v", res.Err)
					failed++
					out[u.ID] = []spans.Entity{}
				} else {
					out[u.ID] = res.Entities
					repairs += res.Repairs
				}
				mu.Unlock()
			}
		}()
	}
	for _, u := range utterances {
		jobs <- u
	}
	close(jobs)
	wg.Wait()

	return out, failed, repairs
}
