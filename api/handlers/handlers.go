package handlers

import (
	"github.com/docsage/docsage/internal/completion"
	"github.com/docsage/docsage/internal/service/rag"
	"github.com/docsage/docsage/pkg/logger"
)

type Handlers struct {
	Document *DocumentHandler
	Health   *HealthHandler
}

func NewHandlers(service rag.Service, health *completion.OllamaClient, log logger.Logger) *Handlers {
	return &Handlers{
		Document: NewDocumentHandler(service, log),
		Health:   NewHealthHandler(health),
	}
}
