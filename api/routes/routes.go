package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/docsage/docsage/api/handlers"
	"github.com/docsage/docsage/api/middleware"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handlers, allowedOrigins []string) {
	r.Use(middleware.CORS(allowedOrigins))

	r.GET("/health", h.Health.Check)
	r.POST("/debug/reset", h.Document.Reset)

	v1 := r.Group("/api/v1")

	v1.GET("/stats", h.Document.Stats)

	docs := v1.Group("/documents")
	{
		docs.POST("", h.Document.Upload)
		docs.GET("", h.Document.List)
		docs.POST("/:id/ask", h.Document.Ask)
		docs.POST("/:id/summarize", h.Document.Summarize)
		docs.GET("/:id/full-text", h.Document.FullText)
		docs.DELETE("/:id", h.Document.Delete)
	}
}
