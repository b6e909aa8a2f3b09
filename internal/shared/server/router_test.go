package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"rijal-backend/internal/analysis"
	"rijal-backend/internal/batch"
	"rijal-backend/internal/engine"
	"rijal-backend/internal/extractor"
	"rijal-backend/internal/shared/config"
	"rijal-backend/internal/similarity"
)

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, text string) ([]extractor.Mention, error) {
	if !strings.Contains(text, "حدثنا") {
		return []extractor.Mention{}, nil
	}
	return []extractor.Mention{{
		Name:       "محمد بن إسماعيل",
		Confidence: 0.9,
		Span:       extractor.Span{Start: 0, End: 10},
		Category:   extractor.CategoryNarrator,
	}}, nil
}

type stubSentiment struct{}

func (stubSentiment) Classify(context.Context, string) (string, float64, error) {
	return "positive", 0.9, nil
}

type stubEncoder struct{}

func (stubEncoder) Encode(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (stubEncoder) Dim() int { return 3 }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	analyzer := analysis.New(stubExtractor{}, stubSentiment{})
	eng := engine.New(engine.Deps{
		Analyzer:   analyzer,
		Similarity: similarity.New(stubEncoder{}),
		Batches:    batch.NewProcessor(analyzer, batch.NewMemoryStore()),
	})
	return NewRouter(config.Config{Port: "0"}, eng)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "analysis_started_total") {
		t.Fatalf("metrics output missing counters: %s", rec.Body.String())
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/analyze", gin.H{"text": "حدثنا محمد بن إسماعيل"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result analysis.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(result.NarratorMentions) != 1 {
		t.Fatalf("mentions = %d, want 1", len(result.NarratorMentions))
	}
	if result.Language != analysis.LanguageArabic {
		t.Fatalf("language = %q, want arabic", result.Language)
	}
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/analyze", gin.H{"text": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp struct {
		Error struct {
			Code      string `json:"code"`
			Retryable bool   `json:"retryable"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Code != engine.ErrorCodeValidation {
		t.Fatalf("code = %q, want %q", resp.Error.Code, engine.ErrorCodeValidation)
	}
	if resp.Error.Retryable {
		t.Fatal("validation errors must not be retryable")
	}
}

func TestAnalyzeEndpointBadJSON(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSimilarityEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/similarity", gin.H{"text1": "نص", "text2": "نص"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result similarity.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Similarity < 0.99 {
		t.Fatalf("similarity = %v, want ~1", result.Similarity)
	}
}

func TestSimilaritySearchEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/similarity/search", gin.H{
		"query": "نص",
		"corpus": []gin.H{
			{"id": "h1", "text": "نص اول"},
			{"id": "h2", "text": "نص ثان"},
		},
		"topK": 1,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Results []similarity.Result `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1 (topK)", len(resp.Results))
	}
}

func TestBatchSubmitAndPoll(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/batch", gin.H{"texts": []string{"حدثنا محمد", "حدثنا علي"}})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var submitResp struct {
		JobID  string `json:"jobId"`
		Status string `json:"status"`
		Total  int    `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &submitResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if submitResp.JobID == "" || submitResp.Total != 2 {
		t.Fatalf("submit response = %+v", submitResp)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		poll := doJSON(t, router, http.MethodGet, "/api/v1/batch/"+submitResp.JobID, nil)
		switch poll.Code {
		case http.StatusOK:
			var job batch.Job
			if err := json.Unmarshal(poll.Body.Bytes(), &job); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if job.Terminal() {
				if job.Status != batch.StatusCompleted {
					t.Fatalf("status = %q, error = %q", job.Status, job.Error)
				}
				return
			}
		case http.StatusTooManyRequests:
			if poll.Header().Get("Retry-After") == "" {
				t.Fatal("throttled poll missing Retry-After header")
			}
		default:
			t.Fatalf("poll status = %d, body = %s", poll.Code, poll.Body.String())
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("job did not complete")
}

func TestBatchValidation(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/batch", gin.H{"texts": []string{"", "  "}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBatchPollUnknownJob(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/batch/no-such-job", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestNarratorSearchRequiresName(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/narrators/search", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestNarratorSearchEmptyCorpus(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/narrators/search?name=%D9%85%D8%AD%D9%85%D8%AF", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Narrators []any `json:"narrators"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Narrators) != 0 {
		t.Fatalf("narrators = %d, want 0", len(resp.Narrators))
	}
}

func TestBatchUploadRejectsNonPDF(t *testing.T) {
	router := newTestRouter(t)
	body := new(bytes.Buffer)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batch/upload", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing file", rec.Code)
	}
}
