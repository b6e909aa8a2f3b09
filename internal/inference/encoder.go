package inference

import (
	"context"
	"fmt"
	"sync"

	"github.com/sugarme/tokenizer"
	ort "github.com/yalue/onnxruntime_go"
)

// Encoder produces fixed-length sentence embeddings via mean pooling over the
// model's token states, L2-normalized so cosine similarity reduces to a dot
// product.
type Encoder struct {
	mu        sync.Mutex
	session   *ort.DynamicAdvancedSession
	tok       *tokenizer.Tokenizer
	maxSeqLen int
	dim       int
}

func newEncoder(modelPath string, tok *tokenizer.Tokenizer, maxSeqLen, dim int) (*Encoder, error) {
	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"last_hidden_state"},
		nil)
	if err != nil {
		return nil, err
	}
	return &Encoder{session: session, tok: tok, maxSeqLen: maxSeqLen, dim: dim}, nil
}

// Dim returns the embedding dimensionality.
func (e *Encoder) Dim() int {
	return e.dim
}

// Encode embeds a single text. The output is deterministic for identical
// input: the session holds no per-call state and pooling is purely
// arithmetic.
func (e *Encoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e == nil || e.session == nil {
		return nil, fmt.Errorf("encoder is not initialized")
	}

	enc, err := encodeText(e.tok, text, e.maxSeqLen)
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

	outTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(enc.seqLen), int64(e.dim)))
	if err != nil {
		return nil, fmt.Errorf("output tensor: %w", err)
	}
	defer outTensor.Destroy()

	// onnxruntime sessions are not safe for concurrent Run calls on the
	// same session object.
	e.mu.Lock()
	err = e.session.Run([]ort.Value{idsTensor, maskTensor}, []ort.Value{outTensor})
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("encoder inference: %w", err)
	}

	pooled := meanPool(outTensor.GetData(), enc.mask, enc.seqLen, e.dim)
	return l2Normalize(pooled), nil
}

func (e *Encoder) destroy() {
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
}
