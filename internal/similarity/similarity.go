// Package similarity turns texts into L2-normalized embeddings and ranks
// them by cosine similarity, for direct comparison and corpus search.
package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"rijal-backend/internal/textnorm"
)

// ErrEncoderUnavailable is returned when the engine was built without an
// encoder; embedding failure must never degrade to a silent zero vector.
var ErrEncoderUnavailable = errors.New("sentence encoder unavailable")

// ErrEmbedding marks a mid-call failure of embedding generation. Only the
// specific call is affected; retrying is safe.
var ErrEmbedding = errors.New("embedding generation failed")

// Encoder is the embedding model dependency.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	Dim() int
}

// Result is a pairwise comparison outcome. Similarity is rounded to four
// decimal places for stable display and testing.
type Result struct {
	SourceID         string  `json:"sourceId,omitempty"`
	Similarity       float64 `json:"similarity"`
	ProcessingTimeMs float64 `json:"processingTimeMs"`
}

// CorpusEntry is one candidate text for nearest-neighbor search.
type CorpusEntry struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Engine computes embeddings and similarity.
type Engine struct {
	encoder Encoder
}

// New constructs an Engine around the given encoder.
func New(encoder Encoder) *Engine {
	return &Engine{encoder: encoder}
}

// Embed returns the vector representation of text. Deterministic: identical
// input yields identical vectors.
func (e *Engine) Embed(ctx context.Context, text string) ([]float32, error) {
	if e == nil || e.encoder == nil {
		return nil, ErrEncoderUnavailable
	}
	vec, err := e.encoder.Encode(ctx, textnorm.Normalize(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	return vec, nil
}

// Compare embeds both inputs in parallel and reports their cosine
// similarity.
func (e *Engine) Compare(ctx context.Context, a, b string) (Result, error) {
	start := time.Now()

	var vecA, vecB []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vec, err := e.Embed(gctx, a)
		vecA = vec
		return err
	})
	g.Go(func() error {
		vec, err := e.Embed(gctx, b)
		vecB = vec
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return Result{
		Similarity:       round4(Cosine(vecA, vecB)),
		ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

// Search ranks corpus entries by similarity to query, descending, keeping at
// most topK results. topK <= 0 means no limit.
func (e *Engine) Search(ctx context.Context, query string, corpus []CorpusEntry, topK int) ([]Result, error) {
	start := time.Now()

	queryVec, err := e.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(corpus))
	for _, entry := range corpus {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.Embed(ctx, entry.Text)
		if err != nil {
			return nil, fmt.Errorf("embed corpus entry %s: %w", entry.ID, err)
		}
		results = append(results, Result{
			SourceID:   entry.ID,
			Similarity: round4(Cosine(queryVec, vec)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].SourceID < results[j].SourceID
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	for i := range results {
		results[i].ProcessingTimeMs = elapsed
	}
	return results, nil
}

// Cosine computes cosine similarity between two vectors. Mismatched or empty
// vectors score zero.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
