// Package inference wraps the local ONNX models the analysis engine depends
// on: a sentence encoder for embeddings, a token-classification tagger for
// person entities, and a binary sentiment classifier. Sessions are loaded
// once and shared read-only across concurrent callers.
package inference

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// Config locates model assets on disk.
type Config struct {
	// ModelDir holds encoder.onnx, tagger.onnx and sentiment.onnx.
	ModelDir string
	// OrtLibrary is the path to the onnxruntime shared library. Empty means
	// the platform default lookup.
	OrtLibrary string
	// TokenizerPath points at the HuggingFace tokenizer.json shared by the
	// three models. Defaults to ModelDir/tokenizer.json.
	TokenizerPath string
	MaxSeqLen     int
	EmbeddingDim  int
}

func (c Config) withDefaults() Config {
	if c.TokenizerPath == "" {
		c.TokenizerPath = filepath.Join(c.ModelDir, "tokenizer.json")
	}
	if c.MaxSeqLen <= 0 {
		c.MaxSeqLen = 256
	}
	if c.EmbeddingDim <= 0 {
		c.EmbeddingDim = 384
	}
	return c
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// initOrtEnvironment initializes the shared onnxruntime environment once per
// process. Model sessions from all runtimes share it.
func initOrtEnvironment(libraryPath string) error {
	ortInitOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// Runtime bundles the loaded models.
type Runtime struct {
	Encoder   *Encoder
	Tagger    *PersonTagger
	Sentiment *SentimentClassifier

	tok *tokenizer.Tokenizer
}

// NewRuntime loads the tokenizer and the three model sessions. Any load
// failure tears down what was already created and returns the error; the
// caller surfaces it as an initialization failure.
func NewRuntime(cfg Config) (*Runtime, error) {
	cfg = cfg.withDefaults()

	if err := initOrtEnvironment(cfg.OrtLibrary); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	tok, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", cfg.TokenizerPath, err)
	}

	rt := &Runtime{tok: tok}

	rt.Encoder, err = newEncoder(filepath.Join(cfg.ModelDir, "encoder.onnx"), tok, cfg.MaxSeqLen, cfg.EmbeddingDim)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("load encoder: %w", err)
	}
	rt.Tagger, err = newPersonTagger(filepath.Join(cfg.ModelDir, "tagger.onnx"), tok, cfg.MaxSeqLen)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("load tagger: %w", err)
	}
	rt.Sentiment, err = newSentimentClassifier(filepath.Join(cfg.ModelDir, "sentiment.onnx"), tok, cfg.MaxSeqLen)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("load sentiment classifier: %w", err)
	}

	return rt, nil
}

// Close releases the model sessions. Safe to call on a partially built runtime.
func (r *Runtime) Close() {
	if r == nil {
		return
	}
	if r.Encoder != nil {
		r.Encoder.destroy()
		r.Encoder = nil
	}
	if r.Tagger != nil {
		r.Tagger.destroy()
		r.Tagger = nil
	}
	if r.Sentiment != nil {
		r.Sentiment.destroy()
		r.Sentiment = nil
	}
}

// encoded is the fixed-length tokenizer output fed to every model.
type encoded struct {
	ids     []int64
	mask    []int64
	offsets [][2]int // byte offsets into the input text, zero for specials
	seqLen  int
}

// encodeText tokenizes text, truncates to maxSeqLen and pads to a fixed
// shape so the model sessions always see the same input dimensions.
func encodeText(tok *tokenizer.Tokenizer, text string, maxSeqLen int) (encoded, error) {
	en, err := tok.EncodeSingle(text, true)
	if err != nil {
		return encoded{}, fmt.Errorf("tokenize: %w", err)
	}

	// Tokenizer offsets are rune-indexed; build a rune-to-byte table so
	// entity spans can be reported as byte offsets.
	runeToByte := make([]int, 0, len(text)+1)
	for i := range text {
		runeToByte = append(runeToByte, i)
	}
	runeToByte = append(runeToByte, len(text))
	toByte := func(runeIdx int) int {
		if runeIdx < 0 {
			return 0
		}
		if runeIdx >= len(runeToByte) {
			return len(text)
		}
		return runeToByte[runeIdx]
	}

	out := encoded{
		ids:     make([]int64, maxSeqLen),
		mask:    make([]int64, maxSeqLen),
		offsets: make([][2]int, maxSeqLen),
		seqLen:  maxSeqLen,
	}
	n := len(en.Ids)
	if n > maxSeqLen {
		n = maxSeqLen
	}
	for i := 0; i < n; i++ {
		out.ids[i] = int64(en.Ids[i])
		out.mask[i] = 1
		if i < len(en.Offsets) && len(en.Offsets[i]) == 2 {
			out.offsets[i] = [2]int{toByte(en.Offsets[i][0]), toByte(en.Offsets[i][1])}
		}
	}
	return out, nil
}
