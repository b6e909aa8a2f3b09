// Package analysis orchestrates the single-text pipeline: narrator
// extraction, language detection, sentiment, readability and key-term
// extraction assembled into one immutable result.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"rijal-backend/internal/extractor"
	"rijal-backend/internal/shared/telemetry"
	"rijal-backend/internal/textnorm"
)

// sentimentClarity is the minimum classifier probability for a label to be
// reported instead of neutral.
const sentimentClarity = 0.6

// ErrAnalysis marks a mid-call failure of the core analysis pipeline. The
// engine state stays usable; the call is safe to retry.
var ErrAnalysis = errors.New("text analysis failed")

// Extractor is the narrator extraction dependency.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]extractor.Mention, error)
}

// SentimentClassifier is the sentiment dependency. Failures are absorbed
// into a neutral default.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (label string, score float64, err error)
}

// Analyzer runs the pipeline. The three model-backed sub-analyses are
// independent and run concurrently; language and readability are cheap and
// computed synchronously.
type Analyzer struct {
	Extractor Extractor
	Sentiment SentimentClassifier
}

// New constructs an Analyzer.
func New(ex Extractor, sentiment SentimentClassifier) *Analyzer {
	return &Analyzer{Extractor: ex, Sentiment: sentiment}
}

// Analyze produces the structured result for one text. It fails only when
// the extraction primitives are unavailable; a partial result would be
// misleading to the caller.
func (a *Analyzer) Analyze(ctx context.Context, text string) (Result, error) {
	start := time.Now()

	normalized := textnorm.Normalize(text)

	var (
		mentions  []extractor.Mention
		sentiment = SentimentNeutral
		keyTerms  []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := a.Extractor.Extract(gctx, text)
		if err != nil {
			return fmt.Errorf("%w: narrator extraction: %w", ErrAnalysis, err)
		}
		mentions = found
		return nil
	})
	g.Go(func() error {
		sentiment = a.classifySentiment(gctx, text)
		return nil
	})
	g.Go(func() error {
		keyTerms = extractKeyTerms(normalized)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if mentions == nil {
		mentions = []extractor.Mention{}
	}
	if keyTerms == nil {
		keyTerms = []string{}
	}

	return Result{
		OriginalText:      text,
		NormalizedText:    normalized,
		NarratorMentions:  mentions,
		OverallConfidence: overallConfidence(mentions),
		Language:          detectLanguage(text),
		Sentiment:         sentiment,
		ReadabilityScore:  readabilityScore(text),
		KeyTerms:          keyTerms,
		ProcessingTimeMs:  float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

// classifySentiment maps the classifier output onto the coarse sentiment
// scale. Classifier failure or an unclear label degrades to neutral; the
// signal is supplementary and must not fail the analysis.
func (a *Analyzer) classifySentiment(ctx context.Context, text string) Sentiment {
	if a.Sentiment == nil {
		return SentimentNeutral
	}
	label, score, err := a.Sentiment.Classify(ctx, text)
	if err != nil {
		telemetry.Warn("analysis.sentiment_failed", map[string]any{
			"error": err.Error(),
			"input": telemetry.TruncateInput(text),
		})
		return SentimentNeutral
	}
	if score < sentimentClarity {
		return SentimentNeutral
	}
	switch label {
	case "positive":
		return SentimentPositive
	case "negative":
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func overallConfidence(mentions []extractor.Mention) float64 {
	if len(mentions) == 0 {
		return neutralConfidence
	}
	var sum float64
	for _, m := range mentions {
		sum += m.Confidence
	}
	return sum / float64(len(mentions))
}
