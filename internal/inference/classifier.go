package inference

import (
	"context"
	"fmt"
	"sync"

	"github.com/sugarme/tokenizer"
	ort "github.com/yalue/onnxruntime_go"
)

// Sentiment labels in the classifier's output-index order.
const (
	sentimentNegativeIdx = 0
	sentimentPositiveIdx = 1
)

// SentimentClassifier runs a binary sentence classifier and reports the
// winning label with its probability.
type SentimentClassifier struct {
	mu        sync.Mutex
	session   *ort.DynamicAdvancedSession
	tok       *tokenizer.Tokenizer
	maxSeqLen int
}

func newSentimentClassifier(modelPath string, tok *tokenizer.Tokenizer, maxSeqLen int) (*SentimentClassifier, error) {
	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		nil)
	if err != nil {
		return nil, err
	}
	return &SentimentClassifier{session: session, tok: tok, maxSeqLen: maxSeqLen}, nil
}

// Classify returns "positive" or "negative" with the winning probability.
func (s *SentimentClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	if s == nil || s.session == nil {
		return "", 0, fmt.Errorf("sentiment classifier is not initialized")
	}

	enc, err := encodeText(s.tok, text, s.maxSeqLen)
	if err != nil {
		return "", 0, err
	}

	inputShape := ort.NewShape(1, int64(enc.seqLen))
	idsTensor, err := ort.NewTensor(inputShape, enc.ids)
	if err != nil {
		return "", 0, fmt.Errorf("input tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(inputShape, enc.mask)
	if err != nil {
		return "", 0, fmt.Errorf("mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	outTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		return "", 0, fmt.Errorf("output tensor: %w", err)
	}
	defer outTensor.Destroy()

	s.mu.Lock()
	err = s.session.Run([]ort.Value{idsTensor, maskTensor}, []ort.Value{outTensor})
	s.mu.Unlock()
	if err != nil {
		return "", 0, fmt.Errorf("sentiment inference: %w", err)
	}

	probs := softmax(outTensor.GetData())
	best := argmax(probs)
	switch best {
	case sentimentPositiveIdx:
		return "positive", probs[best], nil
	case sentimentNegativeIdx:
		return "negative", probs[best], nil
	default:
		return "", 0, fmt.Errorf("sentiment classifier produced no output")
	}
}

func (s *SentimentClassifier) destroy() {
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
}
