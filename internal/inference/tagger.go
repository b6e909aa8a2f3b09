package inference

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sugarme/tokenizer"
	ort "github.com/yalue/onnxruntime_go"
)

// Entity is a labeled span found by the tagger. Start and End are byte
// offsets into the tagged text.
type Entity struct {
	Text  string
	Label string
	Start int
	End   int
	Score float64
}

// bioLabels is the CoNLL-style tag set of the multilingual NER model, in
// output-index order.
var bioLabels = []string{"O", "B-PER", "I-PER", "B-ORG", "I-ORG", "B-LOC", "I-LOC", "B-MISC", "I-MISC"}

// PersonTagger runs token classification and decodes BIO tags into entity
// spans. Only person entities are of interest to the narrator extractor, but
// decoding keeps all labels so the span grouping stays correct.
type PersonTagger struct {
	mu        sync.Mutex
	session   *ort.DynamicAdvancedSession
	tok       *tokenizer.Tokenizer
	maxSeqLen int
	labels    []string
}

func newPersonTagger(modelPath string, tok *tokenizer.Tokenizer, maxSeqLen int) (*PersonTagger, error) {
	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		nil)
	if err != nil {
		return nil, err
	}
	return &PersonTagger{session: session, tok: tok, maxSeqLen: maxSeqLen, labels: bioLabels}, nil
}

// TagPersons returns the person entities found in text.
func (t *PersonTagger) TagPersons(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t == nil || t.session == nil {
		return nil, fmt.Errorf("tagger is not initialized")
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	enc, err := encodeText(t.tok, text, t.maxSeqLen)
	if err != nil {
		return nil, err
	}

	inputShape := ort.NewShape(1, int64(enc.seqLen))
	idsTensor, err := ort.NewTensor(inputShape, enc.ids)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(inputShape, enc.mask)
	if err != nil {
		return nil, fmt.Errorf("mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	outTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(enc.seqLen), int64(len(t.labels))))
	if err != nil {
		return nil, fmt.Errorf("output tensor: %w", err)
	}
	defer outTensor.Destroy()

	t.mu.Lock()
	err = t.session.Run([]ort.Value{idsTensor, maskTensor}, []ort.Value{outTensor})
	t.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("tagger inference: %w", err)
	}

	preds := decodeTokenPredictions(outTensor.GetData(), enc, t.labels)
	entities := groupBIOSpans(preds, text)

	persons := entities[:0]
	for _, e := range entities {
		if e.Label == "PER" {
			persons = append(persons, e)
		}
	}
	return persons, nil
}

func (t *PersonTagger) destroy() {
	if t.session != nil {
		t.session.Destroy()
		t.session = nil
	}
}

// tokenPrediction is one token's decoded tag.
type tokenPrediction struct {
	label string
	score float64
	start int
	end   int
}

// decodeTokenPredictions applies softmax per token and keeps the argmax tag
// for every non-padding, non-special token.
func decodeTokenPredictions(logits []float32, enc encoded, labels []string) []tokenPrediction {
	numLabels := len(labels)
	preds := make([]tokenPrediction, 0, enc.seqLen)
	for i := 0; i < enc.seqLen; i++ {
		if enc.mask[i] == 0 {
			break
		}
		// Special tokens carry a zero-width offset; skip them.
		if enc.offsets[i][1] <= enc.offsets[i][0] {
			continue
		}
		row := logits[i*numLabels : (i+1)*numLabels]
		probs := softmax(row)
		best := argmax(probs)
		if best < 0 {
			continue
		}
		preds = append(preds, tokenPrediction{
			label: labels[best],
			score: probs[best],
			start: enc.offsets[i][0],
			end:   enc.offsets[i][1],
		})
	}
	return preds
}

// groupBIOSpans merges consecutive B-/I- tokens of the same type into one
// entity span. The entity score is the mean of its token scores.
func groupBIOSpans(preds []tokenPrediction, text string) []Entity {
	var entities []Entity
	var current *Entity
	var scoreSum float64
	var scoreCount int

	flush := func() {
		if current == nil {
			return
		}
		current.Score = scoreSum / float64(scoreCount)
		current.Text = text[current.Start:current.End]
		entities = append(entities, *current)
		current = nil
	}

	for _, p := range preds {
		if p.label == "O" {
			flush()
			continue
		}
		kind := p.label
		continuation := false
		if strings.HasPrefix(p.label, "B-") {
			kind = p.label[2:]
		} else if strings.HasPrefix(p.label, "I-") {
			kind = p.label[2:]
			continuation = true
		}

		if continuation && current != nil && current.Label == kind {
			current.End = p.end
			scoreSum += p.score
			scoreCount++
			continue
		}

		flush()
		current = &Entity{Label: kind, Start: p.start, End: p.end}
		scoreSum = p.score
		scoreCount = 1
	}
	flush()

	return entities
}
