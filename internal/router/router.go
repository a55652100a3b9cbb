// Package router wires the HTTP API surface.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"rcman/internal/config"
	"rcman/internal/handler"
	"rcman/internal/middleware"
	"rcman/internal/service"
)

// New builds the gin engine with all middleware and routes registered.
func New(cfg *config.Config, db *sqlx.DB, analysisService service.AnalysisService) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	healthHandler := handler.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	analysisHandler := handler.NewAnalysisHandler(analysisService)
	exportHandler := handler.NewExportHandler(analysisService)

	api := r.Group("/api/v1")
	api.Use(middleware.APIKeyAuth(cfg.Auth.APIKey))
	{
		analyses := api.Group("/analyses")
		analyses.POST("", analysisHandler.Create)
		analyses.GET("", analysisHandler.List)
		analyses.GET("/:id", analysisHandler.Get)
		analyses.GET("/:id/search", analysisHandler.Search)
		analyses.DELETE("/:id", analysisHandler.Delete)

		analyses.GET("/:id/export/csv", exportHandler.CSV)
		analyses.GET("/:id/export/xlsx", exportHandler.XLSX)
		analyses.GET("/:id/export/summary", exportHandler.Summary)
	}

	return r
}
