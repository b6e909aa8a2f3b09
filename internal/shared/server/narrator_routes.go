package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rijal-backend/internal/engine"
	"rijal-backend/internal/narrators"
	"rijal-backend/internal/shared/server/respond"
)

func registerNarratorRoutes(rg *gin.RouterGroup, svc *narrators.Service) {
	rg.GET("/narrators/search", func(c *gin.Context) {
		name := c.Query("name")
		if name == "" {
			respond.Error(c, http.StatusBadRequest, engine.ErrorCodeValidation, "name query parameter is required", false, nil)
			return
		}
		limit := 0
		if v := c.Query("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				limit = parsed
			}
		}
		results, err := svc.Search(c.Request.Context(), name, limit)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, engine.ErrorCodeInternal, "narrator search failed", false, nil)
			return
		}
		respond.JSON(c, http.StatusOK, gin.H{"narrators": results})
	})

	rg.GET("/narrators/:id", func(c *gin.Context) {
		narrator, err := svc.Repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, narrators.ErrNotFound) {
				respond.Error(c, http.StatusNotFound, engine.ErrorCodeNotFound, "narrator not found", false, nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, engine.ErrorCodeInternal, "narrator lookup failed", false, nil)
			return
		}
		opinions, err := svc.Repo.ListOpinions(c.Request.Context(), narrator.ID)
		if err != nil {
			opinions = []narrators.Opinion{}
		}
		respond.JSON(c, http.StatusOK, gin.H{
			"narrator": narrator,
			"opinions": opinions,
		})
	})
}
