package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rijal-backend/internal/batch"
	"rijal-backend/internal/engine"
	"rijal-backend/internal/ingest"
	"rijal-backend/internal/shared/server/respond"
)

// maxUploadBytes bounds batch upload payloads.
const maxUploadBytes = 20 << 20

type batchRequest struct {
	Texts []string `json:"texts"`
}

func registerBatchRoutes(rg *gin.RouterGroup, eng *engine.Engine, limiter *batch.PollLimiter) {
	if limiter == nil {
		limiter = batch.NewPollLimiter(0, nil)
	}

	rg.POST("/batch", func(c *gin.Context) {
		var req batchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, engine.ErrorCodeValidation, "invalid request body", false, nil)
			return
		}
		submitBatch(c, eng, req.Texts)
	})

	rg.POST("/batch/upload", func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			respond.Error(c, http.StatusBadRequest, engine.ErrorCodeValidation, "file is required", false, nil)
			return
		}
		if fileHeader.Size > maxUploadBytes {
			respond.Error(c, http.StatusBadRequest, engine.ErrorCodeValidation, "file too large", false, nil)
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, engine.ErrorCodeInternal, "failed to read upload", false, nil)
			return
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, engine.ErrorCodeInternal, "failed to read upload", false, nil)
			return
		}

		texts, err := ingest.ExtractTexts(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			respond.Error(c, http.StatusBadRequest, engine.ErrorCodeValidation, err.Error(), false, nil)
			return
		}
		submitBatch(c, eng, texts)
	})

	rg.GET("/batch/:id", func(c *gin.Context) {
		jobID := c.Param("id")
		if !limiter.Allow(c.ClientIP(), jobID) {
			c.Header("Retry-After", strconv.Itoa(limiter.RetryAfterSeconds()))
			respond.Error(c, http.StatusTooManyRequests, engine.ErrorCodeValidation, "polling too frequently", true, nil)
			return
		}
		job, err := eng.PollBatch(c.Request.Context(), jobID)
		if err != nil {
			status, code, retryable := engine.Classify(err)
			respond.Error(c, status, code, err.Error(), retryable, nil)
			return
		}
		respond.JSON(c, http.StatusOK, job)
	})
}

func submitBatch(c *gin.Context, eng *engine.Engine, texts []string) {
	job, err := eng.SubmitBatch(c.Request.Context(), texts)
	if err != nil {
		status, code, retryable := engine.Classify(err)
		respond.Error(c, status, code, err.Error(), retryable, nil)
		return
	}
	respond.JSON(c, http.StatusAccepted, gin.H{
		"jobId":  job.JobID,
		"status": job.Status,
		"total":  job.Total,
	})
}
