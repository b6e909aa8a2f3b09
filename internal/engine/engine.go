// Package engine assembles the analysis pipeline behind a single facade:
// model runtime, narrator extraction, text analysis, similarity, and batch
// processing share one initialization path and one error taxonomy.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"rijal-backend/internal/analysis"
	"rijal-backend/internal/batch"
	"rijal-backend/internal/extractor"
	"rijal-backend/internal/inference"
	"rijal-backend/internal/shared/config"
	"rijal-backend/internal/shared/metrics"
	"rijal-backend/internal/shared/telemetry"
	"rijal-backend/internal/similarity"
)

// maxTextBytes bounds single-text inputs. Larger corpora go through batch.
const maxTextBytes = 100_000

// Engine is the public entry point of the pipeline.
type Engine struct {
	runtime    *inference.Runtime
	analyzer   *analysis.Analyzer
	similarity *similarity.Engine
	batches    *batch.Processor
}

// Deps carries pre-built components for New. Tests use this to inject
// stubs; production wiring goes through Default.
type Deps struct {
	Runtime    *inference.Runtime
	Analyzer   *analysis.Analyzer
	Similarity *similarity.Engine
	Batches    *batch.Processor
}

// New assembles an Engine from the given components.
func New(deps Deps) *Engine {
	return &Engine{
		runtime:    deps.Runtime,
		analyzer:   deps.Analyzer,
		similarity: deps.Similarity,
		batches:    deps.Batches,
	}
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
	defaultErr    error
)

// Default builds the production engine exactly once: the model runtime is
// expensive to load and must be shared. A load failure is sticky; later
// calls return the same error without retrying.
func Default(cfg config.Config) (*Engine, error) {
	defaultOnce.Do(func() {
		defaultEngine, defaultErr = build(cfg)
	})
	return defaultEngine, defaultErr
}

func build(cfg config.Config) (*Engine, error) {
	started := time.Now()
	runtime, err := inference.NewRuntime(inference.Config{
		ModelDir:      cfg.ModelDir,
		OrtLibrary:    cfg.OrtLibrary,
		TokenizerPath: cfg.TokenizerPath,
		MaxSeqLen:     cfg.MaxSeqLen,
		EmbeddingDim:  cfg.EmbeddingDim,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotInitialized, err)
	}

	analyzer := analysis.New(extractor.New(runtime.Tagger), runtime.Sentiment)
	sim := similarity.New(runtime.Encoder)
	batches := batch.NewProcessor(analyzer, batch.NewMemoryStore(),
		batch.WithMaxSize(cfg.MaxBatchSize),
		batch.WithRetention(cfg.JobRetention),
	)

	telemetry.Info("engine initialized", map[string]any{
		"model_dir":   cfg.ModelDir,
		"max_seq_len": cfg.MaxSeqLen,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	return New(Deps{
		Runtime:    runtime,
		Analyzer:   analyzer,
		Similarity: sim,
		Batches:    batches,
	}), nil
}

// Analyze runs the full single-text pipeline.
func (e *Engine) Analyze(ctx context.Context, text string) (analysis.Result, error) {
	if err := validateText(text); err != nil {
		return analysis.Result{}, err
	}
	if e == nil || e.analyzer == nil {
		return analysis.Result{}, ErrNotInitialized
	}

	metrics.IncAnalysisStarted()
	started := time.Now()
	result, err := e.analyzer.Analyze(ctx, text)
	if err != nil {
		metrics.IncAnalysisFailed()
		return analysis.Result{}, err
	}
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(time.Since(started).Microseconds()) / 1000.0)
	return result, nil
}

// Compare embeds both texts and reports their cosine similarity.
func (e *Engine) Compare(ctx context.Context, a, b string) (similarity.Result, error) {
	if err := validateText(a); err != nil {
		return similarity.Result{}, err
	}
	if err := validateText(b); err != nil {
		return similarity.Result{}, err
	}
	if e == nil || e.similarity == nil {
		return similarity.Result{}, ErrNotInitialized
	}
	metrics.IncSimilarity()
	return e.similarity.Compare(ctx, a, b)
}

// Search ranks corpus entries against the query text.
func (e *Engine) Search(ctx context.Context, query string, corpus []similarity.CorpusEntry, topK int) ([]similarity.Result, error) {
	if err := validateText(query); err != nil {
		return nil, err
	}
	if len(corpus) == 0 {
		return nil, fmt.Errorf("%w: empty corpus", ErrValidation)
	}
	if e == nil || e.similarity == nil {
		return nil, ErrNotInitialized
	}
	metrics.IncSimilarity()
	return e.similarity.Search(ctx, query, corpus, topK)
}

// SubmitBatch registers an asynchronous multi-text job.
func (e *Engine) SubmitBatch(ctx context.Context, texts []string) (batch.Job, error) {
	if e == nil || e.batches == nil {
		return batch.Job{}, ErrNotInitialized
	}
	return e.batches.Submit(ctx, texts)
}

// PollBatch returns a progress snapshot for a batch job.
func (e *Engine) PollBatch(ctx context.Context, jobID string) (batch.Job, error) {
	if e == nil || e.batches == nil {
		return batch.Job{}, ErrNotInitialized
	}
	if strings.TrimSpace(jobID) == "" {
		return batch.Job{}, fmt.Errorf("%w: missing job id", ErrValidation)
	}
	return e.batches.Poll(ctx, jobID)
}

// Close releases model sessions. Safe to call on a partially built engine.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.runtime.Close()
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: empty text", ErrValidation)
	}
	if len(text) > maxTextBytes {
		return fmt.Errorf("%w: text exceeds %d bytes", ErrValidation, maxTextBytes)
	}
	return nil
}
