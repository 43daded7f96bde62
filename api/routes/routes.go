package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/feichai0017/docintel/api/handlers"
	"github.com/feichai0017/docintel/api/middleware"
)

// SetupRoutes wires the HTTP surface of the extraction engine.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")

	v1.GET("/health", h.Extraction.Health)

	ext := v1.Group("/extract")
	{
		ext.POST("", h.Extraction.Extract)
		ext.POST("/batch", h.Extraction.ExtractBatch)
	}

	jobs := v1.Group("/jobs")
	{
		jobs.POST("", h.Extraction.SubmitJob)
		jobs.GET("/:jobId", h.Extraction.JobStatus)
		jobs.GET("/:jobId/result", h.Extraction.JobResult)
		jobs.DELETE("/:jobId", h.Extraction.CancelJob)
	}

	v1.GET("/plugins", h.Extraction.Plugins)

	cache := v1.Group("/cache")
	{
		cache.GET("/stats", h.Extraction.CacheStats)
		cache.DELETE("", h.Extraction.ClearCache)
	}
}
