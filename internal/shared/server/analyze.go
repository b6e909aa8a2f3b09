package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rijal-backend/internal/engine"
	"rijal-backend/internal/narrators"
	"rijal-backend/internal/shared/server/respond"
)

type analyzeRequest struct {
	Text string `json:"text"`
	// MatchNarrators enriches extracted mentions with known biographical
	// records.
	MatchNarrators bool `json:"matchNarrators"`
}

func registerAnalyzeRoutes(rg *gin.RouterGroup, eng *engine.Engine, narratorSvc *narrators.Service) {
	rg.POST("/analyze", func(c *gin.Context) {
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, engine.ErrorCodeValidation, "invalid request body", false, nil)
			return
		}

		result, err := eng.Analyze(c.Request.Context(), req.Text)
		if err != nil {
			status, code, retryable := engine.Classify(err)
			respond.Error(c, status, code, err.Error(), retryable, nil)
			return
		}

		if !req.MatchNarrators || narratorSvc == nil {
			respond.JSON(c, http.StatusOK, result)
			return
		}
		matches, err := narratorSvc.MatchMentions(c.Request.Context(), result.NarratorMentions)
		if err != nil {
			// Lookup problems must not hide a finished analysis.
			respond.JSON(c, http.StatusOK, gin.H{"analysis": result})
			return
		}
		respond.JSON(c, http.StatusOK, gin.H{
			"analysis":        result,
			"narratorMatches": matches,
		})
	})
}
