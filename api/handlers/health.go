package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docsage/docsage/internal/completion"
)

type HealthHandler struct {
	ollama *completion.OllamaClient
}

func NewHealthHandler(ollama *completion.OllamaClient) *HealthHandler {
	return &HealthHandler{ollama: ollama}
}

// Check reports liveness plus reachability of the completion backend.
func (h *HealthHandler) Check(c *gin.Context) {
	ollamaOK := false
	if h.ollama != nil {
		ollamaOK = h.ollama.Healthy(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"timestamp":        time.Now().Format(time.RFC3339),
		"ollama_connected": ollamaOK,
	})
}
