// Package model wraps the ONNX token-classification session for the PII
// labeler. It owns the tokenizer, the label vocabulary loaded from the model
// directory, and a pool of pre-allocated inference sessions.
package model

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/voxredact-ai/voxredact/internal/labels"
	"github.com/voxredact-ai/voxredact/internal/tokenize"
)

// Runner executes per-utterance token classification. Sessions are checked
// out of a channel pool, so a Runner is safe for concurrent use.
type Runner struct {
	modelPath      string
	tok            *tokenize.WordPiece
	vocab          *labels.Vocabulary
	seqLen         int
	numLabels      int
	needsTokenType bool
	outputName     string
	sessions       chan *session
}

type session struct {
	session       *ort.AdvancedSession
	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	tokenTypeIDs  *ort.Tensor[int64]
	output        *ort.Tensor[float32]
}

// Load initializes the ONNX environment, tokenizer, label map, and session
// pool from a model directory. Model and tokenizer load failures are fatal;
// everything downstream of a loaded Runner degrades instead of failing.
func Load(modelDir string, seqLen int, rt RuntimeSettings) (*Runner, error) {
	if strings.TrimSpace(modelDir) == "" {
		return nil, errors.New("modelDir is empty")
	}
	if seqLen <= 0 {
		seqLen = 128
	}

	libPath := resolveSharedLibraryPath(modelDir)
	if libPath == "" {
		return nil, fmt.Errorf("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	modelPath := resolveModelPath(modelDir)
	if modelPath == "" {
		return nil, fmt.Errorf("no model.int8.onnx or model.onnx under %s", modelDir)
	}

	meta, err := loadMeta(modelDir)
	if err != nil {
		return nil, fmt.Errorf("load model metadata: %w", err)
	}
	if len(meta.Labels) == 0 {
		return nil, fmt.Errorf("no label map under %s (label_map.json, config.json, or labels.yaml)", modelDir)
	}

	tok, err := tokenize.LoadDir(modelDir)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	outputName, err := selectOutputName(modelPath)
	if err != nil {
		return nil, fmt.Errorf("select model output: %w", err)
	}

	r := &Runner{
		modelPath:      modelPath,
		tok:            tok,
		vocab:          labels.FromLabels(meta.Labels),
		seqLen:         seqLen,
		numLabels:      len(meta.Labels),
		needsTokenType: meta.RequiresTokenType,
		outputName:     outputName,
		sessions:       make(chan *session, rt.Sessions),
	}
	for i := 0; i < rt.Sessions; i++ {
		ss, err := r.newSession(rt)
		if err != nil {
			return nil, fmt.Errorf("create onnx session %d/%d: %w", i+1, rt.Sessions, err)
		}
		r.sessions <- ss
	}
	return r, nil
}

// Vocab returns the label vocabulary loaded from the model directory.
func (r *Runner) Vocab() *labels.Vocabulary {
	return r.vocab
}

// Tokenizer returns the model's tokenizer.
func (r *Runner) Tokenizer() *tokenize.WordPiece {
	return r.tok
}

// ModelFile returns the basename of the loaded model, for logging.
func (r *Runner) ModelFile() string {
	return filepath.Base(r.modelPath)
}

// PredictIDs tokenizes the text, runs the model, and returns the arg-max
// label id plus the character offset for every token position.
func (r *Runner) PredictIDs(text string) ([]int, []tokenize.Offset, error) {
	if r == nil || r.sessions == nil {
		return nil, nil, errors.New("model runner not initialized")
	}
	enc := r.tok.Encode(text, r.seqLen)
	if len(enc.InputIDs) == 0 {
		return nil, nil, nil
	}

	ss := <-r.sessions
	defer func() { r.sessions <- ss }()

	copy(ss.inputIDs.GetData(), enc.InputIDs)
	copy(ss.attentionMask.GetData(), enc.AttentionMask)
	if ss.tokenTypeIDs != nil {
		tokenTypes := ss.tokenTypeIDs.GetData()
		for i := range tokenTypes {
			tokenTypes[i] = 0
		}
	}

	if err := ss.session.Run(); err != nil {
		return nil, nil, fmt.Errorf("onnx run: %w", err)
	}

	logits := ss.output.GetData()
	ids := make([]int, len(enc.Offsets))
	for i := range ids {
		base := i * r.numLabels
		if base >= len(logits) {
			break
		}
		best := 0
		bestScore := float32(-math.MaxFloat32)
		for j := 0; j < r.numLabels && base+j < len(logits); j++ {
			if logits[base+j] > bestScore {
				best = j
				bestScore = logits[base+j]
			}
		}
		ids[i] = best
	}
	return ids, enc.Offsets, nil
}

// Warmup runs one inference to page in the model.
func (r *Runner) Warmup(sample string) (time.Duration, error) {
	start := time.Now()
	if _, _, err := r.PredictIDs(sample); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func (r *Runner) newSession(rt RuntimeSettings) (*session, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer opts.Destroy()
	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		return nil, fmt.Errorf("set graph optimization: %w", err)
	}
	if err := opts.SetIntraOpNumThreads(rt.IntraThreads); err != nil {
		return nil, fmt.Errorf("set intra threads: %w", err)
	}
	if err := opts.SetInterOpNumThreads(rt.InterThreads); err != nil {
		return nil, fmt.Errorf("set inter threads: %w", err)
	}

	inputShape := ort.NewShape(1, int64(r.seqLen))
	inputIDs, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate input_ids tensor: %w", err)
	}
	attnMask, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate attention_mask tensor: %w", err)
	}
	var tokenType *ort.Tensor[int64]
	if r.needsTokenType {
		tokenType, err = ort.NewEmptyTensor[int64](inputShape)
		if err != nil {
			return nil, fmt.Errorf("allocate token_type_ids tensor: %w", err)
		}
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(r.seqLen), int64(r.numLabels)))
	if err != nil {
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	inputNames := []string{"input_ids", "attention_mask"}
	inputValues := []ort.Value{inputIDs, attnMask}
	if tokenType != nil {
		inputNames = append(inputNames, "token_type_ids")
		inputValues = append(inputValues, tokenType)
	}

	sess, err := ort.NewAdvancedSession(
		r.modelPath,
		inputNames,
		[]string{r.outputName},
		inputValues,
		[]ort.Value{output},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &session{
		session:       sess,
		inputIDs:      inputIDs,
		attentionMask: attnMask,
		tokenTypeIDs:  tokenType,
		output:        output,
	}, nil
}

// resolveModelPath prefers the int8-quantized export when present.
func resolveModelPath(dir string) string {
	for _, name := range []string{"model.int8.onnx", "model.onnx"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func selectOutputName(modelPath string) (string, error) {
	_, outputs, err := ort.GetInputOutputInfoWithOptions(modelPath, nil)
	if err != nil {
		return "", err
	}
	if len(outputs) == 0 {
		return "", fmt.Errorf("model has no outputs")
	}
	for _, out := range outputs {
		if strings.EqualFold(out.Name, "logits") {
			return out.Name, nil
		}
	}
	if len(outputs) == 1 {
		return outputs[0].Name, nil
	}
	names := make([]string, 0, len(outputs))
	for _, out := range outputs {
		names = append(names, out.Name)
	}
	return "", fmt.Errorf("multiple outputs without logits: %v", names)
}

// resolveSharedLibraryPath locates the platform onnxruntime shared library.
// ONNXRUNTIME_SHARED_LIBRARY_PATH wins; otherwise common names and
// locations are probed, starting with the model directory itself.
func resolveSharedLibraryPath(modelDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"libonnxruntime.so",
		"onnxruntime.so",
		"onnxruntime.dll",
	}
	dirs := []string{
		modelDir,
		filepath.Join(modelDir, "lib"),
		".",
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}
	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
