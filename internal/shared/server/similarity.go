package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rijal-backend/internal/engine"
	"rijal-backend/internal/shared/server/respond"
	"rijal-backend/internal/similarity"
)

type compareRequest struct {
	Text1 string `json:"text1"`
	Text2 string `json:"text2"`
}

type searchRequest struct {
	Query  string                   `json:"query"`
	Corpus []similarity.CorpusEntry `json:"corpus"`
	TopK   int                      `json:"topK"`
}

func registerSimilarityRoutes(rg *gin.RouterGroup, eng *engine.Engine) {
	rg.POST("/similarity", func(c *gin.Context) {
		var req compareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, engine.ErrorCodeValidation, "invalid request body", false, nil)
			return
		}
		result, err := eng.Compare(c.Request.Context(), req.Text1, req.Text2)
		if err != nil {
			status, code, retryable := engine.Classify(err)
			respond.Error(c, status, code, err.Error(), retryable, nil)
			return
		}
		respond.JSON(c, http.StatusOK, result)
	})

	rg.POST("/similarity/search", func(c *gin.Context) {
		var req searchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, engine.ErrorCodeValidation, "invalid request body", false, nil)
			return
		}
		results, err := eng.Search(c.Request.Context(), req.Query, req.Corpus, req.TopK)
		if err != nil {
			status, code, retryable := engine.Classify(err)
			respond.Error(c, status, code, err.Error(), retryable, nil)
			return
		}
		respond.JSON(c, http.StatusOK, gin.H{"results": results})
	})
}
