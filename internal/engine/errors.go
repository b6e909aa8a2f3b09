package engine

import (
	"context"
	"errors"
	"net/http"

	"rijal-backend/internal/analysis"
	"rijal-backend/internal/batch"
	"rijal-backend/internal/extractor"
	"rijal-backend/internal/similarity"
)

var (
	// ErrNotInitialized is returned when an operation needs a model the
	// engine failed to load.
	ErrNotInitialized = errors.New("engine not initialized")
	// ErrValidation is returned for inputs rejected before any model runs.
	ErrValidation = errors.New("invalid input")
)

const (
	ErrorCodeValidation     = "VALIDATION_ERROR"
	ErrorCodeInitialization = "INITIALIZATION_ERROR"
	ErrorCodeAnalysis       = "ANALYSIS_ERROR"
	ErrorCodeEmbedding      = "EMBEDDING_ERROR"
	ErrorCodeTimeout        = "TIMEOUT_ERROR"
	ErrorCodeNotFound       = "NOT_FOUND"
	ErrorCodeInternal       = "INTERNAL_ERROR"
)

// Classify maps an engine error to the HTTP status, stable error code, and
// retryability used by the response envelope.
func Classify(err error) (status int, code string, retryable bool) {
	switch {
	case err == nil:
		return http.StatusOK, "", false
	case errors.Is(err, ErrValidation),
		errors.Is(err, batch.ErrEmptyBatch),
		errors.Is(err, batch.ErrTooLarge):
		return http.StatusBadRequest, ErrorCodeValidation, false
	case errors.Is(err, batch.ErrNotFound):
		return http.StatusNotFound, ErrorCodeNotFound, false
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorCodeTimeout, true
	case errors.Is(err, ErrNotInitialized),
		errors.Is(err, extractor.ErrTaggerUnavailable),
		errors.Is(err, similarity.ErrEncoderUnavailable):
		return http.StatusServiceUnavailable, ErrorCodeInitialization, true
	case errors.Is(err, similarity.ErrEmbedding):
		return http.StatusInternalServerError, ErrorCodeEmbedding, true
	case errors.Is(err, analysis.ErrAnalysis):
		return http.StatusInternalServerError, ErrorCodeAnalysis, true
	default:
		return http.StatusInternalServerError, ErrorCodeInternal, false
	}
}
