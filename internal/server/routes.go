package server

import (
	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/procurement-tracker/internal/common"
)

// SetupRouter builds the HTTP API.
func SetupRouter(cfg common.ServerConfig, h *Handler) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RequestID())
	router.Use(Recovery(h.log))
	router.Use(RequestLogger(h.log))

	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	{
		docs := v1.Group("/documents")
		{
			docs.GET("", h.ListDocuments)
			docs.POST("", h.UploadDocument)
			docs.GET("/:id", h.GetDocument)
			docs.GET("/:id/logs", h.ListLogs)
			docs.GET("/:id/export", h.ExportDocument)
			docs.POST("/:id/process", h.ProcessItems)
		}

		v1.PUT("/items/:id/suggestions/:equipmentId/confirm", h.ConfirmSuggestion)

		catalog := v1.Group("/catalog")
		{
			catalog.POST("/import", h.ImportCatalog)
			catalog.POST("/invalidate", h.InvalidateCatalog)
		}
	}

	return router
}
