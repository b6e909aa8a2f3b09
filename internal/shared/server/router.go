// Package server wires the HTTP surface: routing, middleware, and the
// request handlers that front the analysis engine.
package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"rijal-backend/internal/engine"
	"rijal-backend/internal/narrators"
	"rijal-backend/internal/shared/config"
	"rijal-backend/internal/shared/metrics"
	"rijal-backend/internal/shared/server/middleware"
	"rijal-backend/internal/shared/server/respond"
	"rijal-backend/internal/shared/storage/db"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
// eng may come from engine.Default or, in tests, engine.New with stubs.
func NewRouter(cfg config.Config, eng *engine.Engine) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	// Dependencies
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	var narratorRepo narrators.Repo
	if sqlDB != nil {
		narratorRepo = &narrators.PGRepo{DB: sqlDB}
	} else {
		narratorRepo = narrators.NewMemoryRepo()
	}
	narratorSvc := narrators.NewService(narratorRepo)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())
	registerAnalyzeRoutes(api, eng, narratorSvc)
	registerSimilarityRoutes(api, eng)
	registerBatchRoutes(api, eng, nil)
	registerNarratorRoutes(api, narratorSvc)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
