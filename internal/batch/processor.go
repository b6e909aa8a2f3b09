// Package batch runs multi-text analyses asynchronously. A submission
// returns immediately with a job ID; items are processed one at a time and
// progress is observed through polling.
package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rijal-backend/internal/analysis"
	"rijal-backend/internal/shared/metrics"
	"rijal-backend/internal/shared/telemetry"
)

const (
	defaultMaxBatchSize = 50
	defaultJobTimeout   = 10 * time.Minute
	defaultRetention    = 15 * time.Minute
)

// ErrEmptyBatch indicates the submission contained no analyzable text.
var ErrEmptyBatch = errors.New("batch contains no non-empty texts")

// ErrTooLarge indicates the submission exceeded the configured item limit.
var ErrTooLarge = errors.New("batch exceeds maximum size")

// Analyzer runs the single-text pipeline for each batch item.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (analysis.Result, error)
}

// Processor validates submissions, runs jobs, and serves progress snapshots.
type Processor struct {
	analyzer  Analyzer
	store     *MemoryStore
	maxSize   int
	timeout   time.Duration
	retention time.Duration
}

// Option configures a Processor.
type Option func(*Processor)

// WithMaxSize caps the number of texts accepted per submission.
func WithMaxSize(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxSize = n
		}
	}
}

// WithTimeout bounds the wall-clock time of one job run.
func WithTimeout(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithRetention controls how long terminal jobs stay pollable.
func WithRetention(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.retention = d
		}
	}
}

// NewProcessor constructs a Processor backed by the given store.
func NewProcessor(analyzer Analyzer, store *MemoryStore, opts ...Option) *Processor {
	p := &Processor{
		analyzer:  analyzer,
		store:     store,
		maxSize:   defaultMaxBatchSize,
		timeout:   defaultJobTimeout,
		retention: defaultRetention,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit validates texts, registers a pending job, and starts processing in
// the background. The returned snapshot reflects the job before any item has
// run; all-blank submissions are rejected up front rather than failing
// mid-run.
func (p *Processor) Submit(ctx context.Context, texts []string) (Job, error) {
	p.store.Prune(p.retention)

	if len(texts) > p.maxSize {
		return Job{}, fmt.Errorf("%w: %d texts, limit %d", ErrTooLarge, len(texts), p.maxSize)
	}
	hasContent := false
	for _, text := range texts {
		if strings.TrimSpace(text) != "" {
			hasContent = true
			break
		}
	}
	if !hasContent {
		return Job{}, ErrEmptyBatch
	}

	job := Job{
		JobID:     uuid.NewString(),
		Status:    StatusPending,
		Total:     len(texts),
		Results:   []analysis.Result{},
		CreatedAt: time.Now().UTC(),
	}
	if err := p.store.Create(ctx, job); err != nil {
		return Job{}, err
	}
	metrics.IncBatchSubmitted()
	telemetry.Info("batch job submitted", map[string]any{
		"job_id": job.JobID,
		"total":  job.Total,
	})

	items := make([]string, len(texts))
	copy(items, texts)
	go p.run(job.JobID, items)

	return job, nil
}

// Poll returns a snapshot of the job. Jobs past retention return
// ErrNotFound.
func (p *Processor) Poll(ctx context.Context, jobID string) (Job, error) {
	p.store.Prune(p.retention)
	return p.store.GetByID(ctx, jobID)
}

// run executes the job sequentially. The first item failure stops the job
// and records the error; results of already-finished items are kept.
func (p *Processor) run(jobID string, texts []string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	started := time.Now().UTC()
	if err := p.store.Update(ctx, jobID, func(j *Job) {
		j.Status = StatusProcessing
		j.StartedAt = &started
	}); err != nil {
		telemetry.Error("batch job start update failed", map[string]any{
			"job_id": jobID,
			"error":  err.Error(),
		})
		return
	}

	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			p.fail(jobID, i, fmt.Errorf("batch cancelled: %w", err))
			return
		}
		// Surface which text is running before the (possibly slow) call.
		current := text
		if err := p.store.Update(ctx, jobID, func(j *Job) {
			j.CurrentItem = &current
		}); err != nil {
			return
		}
		result, err := p.analyzer.Analyze(ctx, text)
		if err != nil {
			p.fail(jobID, i, err)
			return
		}
		if err := p.store.Update(ctx, jobID, func(j *Job) {
			j.Results = append(j.Results, result)
			j.Processed = i + 1
		}); err != nil {
			return
		}
	}

	completed := time.Now().UTC()
	if err := p.store.Update(ctx, jobID, func(j *Job) {
		j.Status = StatusCompleted
		j.CurrentItem = nil
		j.CompletedAt = &completed
	}); err != nil {
		return
	}
	metrics.IncBatchCompleted()
	telemetry.Info("batch job completed", map[string]any{
		"job_id":      jobID,
		"processed":   len(texts),
		"duration_ms": time.Since(started).Milliseconds(),
	})
}

func (p *Processor) fail(jobID string, itemIndex int, cause error) {
	completed := time.Now().UTC()
	// A fresh context so the terminal status lands even after timeout.
	updateErr := p.store.Update(context.Background(), jobID, func(j *Job) {
		j.Status = StatusError
		j.Error = fmt.Sprintf("item %d: %v", itemIndex, cause)
		j.CompletedAt = &completed
	})
	if updateErr != nil {
		telemetry.Error("batch job failure update failed", map[string]any{
			"job_id": jobID,
			"error":  updateErr.Error(),
		})
		return
	}
	metrics.IncBatchFailed()
	telemetry.Warn("batch job failed", map[string]any{
		"job_id": jobID,
		"item":   itemIndex,
		"error":  cause.Error(),
	})
}
