// Package extractor detects narrator names in hadith text. Two passes feed
// one merged result: rule-based transmission-verb patterns over the original
// text and a statistical person-entity tagger over the normalized text.
package extractor

import (
	"context"
	"errors"
	"sort"
	"strings"

	"rijal-backend/internal/inference"
	"rijal-backend/internal/shared/telemetry"
	"rijal-backend/internal/textnorm"
)

// statisticalThreshold is the minimum tagger score for a person entity to
// become a mention.
const statisticalThreshold = 0.5

// PersonTagger is the statistical pass dependency.
type PersonTagger interface {
	TagPersons(ctx context.Context, text string) ([]inference.Entity, error)
}

// ErrTaggerUnavailable is returned when the extractor was built without a
// statistical model at all.
var ErrTaggerUnavailable = errors.New("person tagger unavailable")

// Extractor merges pattern and statistical narrator mentions.
type Extractor struct {
	tagger PersonTagger
}

// New constructs an Extractor around the given tagger.
func New(tagger PersonTagger) *Extractor {
	return &Extractor{tagger: tagger}
}

// Extract returns deduplicated narrator mentions sorted descending by
// confidence. A failing tagger degrades to pattern-only results (logged, not
// propagated); only a missing tagger is an error, since that signals the
// engine was never initialized.
func (e *Extractor) Extract(ctx context.Context, text string) ([]Mention, error) {
	if e == nil || e.tagger == nil {
		return nil, ErrTaggerUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return []Mention{}, nil
	}

	mentions := patternPass(text)

	normalized, offsets := textnorm.NormalizeWithOffsets(text)
	entities, err := e.tagger.TagPersons(ctx, normalized)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		telemetry.Warn("extractor.statistical_pass_failed", map[string]any{
			"error": err.Error(),
			"input": telemetry.TruncateInput(text),
		})
	}
	for _, entity := range entities {
		if entity.Score <= statisticalThreshold {
			continue
		}
		start, end := textnorm.SpanToOriginal(offsets, entity.Start, entity.End)
		if start >= end || end > len(text) {
			continue
		}
		mentions = append(mentions, Mention{
			Name:       entity.Text,
			Confidence: entity.Score,
			Span:       Span{Start: start, End: end},
			Category:   CategoryUncertain,
		})
	}

	for i := range mentions {
		mentions[i].Category = categorize(mentions[i].Name, mentions[i].Category)
	}

	merged := dedupe(mentions)
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Confidence != merged[j].Confidence {
			return merged[i].Confidence > merged[j].Confidence
		}
		return merged[i].Name < merged[j].Name
	})
	return merged, nil
}

// dedupe collapses mentions that resolve to the same case/diacritic-folded
// name, keeping the highest-confidence occurrence.
func dedupe(mentions []Mention) []Mention {
	byKey := make(map[string]int, len(mentions))
	out := make([]Mention, 0, len(mentions))
	for _, m := range mentions {
		key := strings.ToLower(textnorm.Normalize(m.Name))
		if key == "" {
			continue
		}
		if idx, ok := byKey[key]; ok {
			if m.Confidence > out[idx].Confidence {
				out[idx] = m
			}
			continue
		}
		byKey[key] = len(out)
		out = append(out, m)
	}
	return out
}
