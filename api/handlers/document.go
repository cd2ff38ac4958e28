package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docsage/docsage/internal/models"
	"github.com/docsage/docsage/internal/service/rag"
	"github.com/docsage/docsage/pkg/logger"
)

type DocumentHandler struct {
	service rag.Service
	logger  logger.Logger
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

func NewDocumentHandler(service rag.Service, log logger.Logger) *DocumentHandler {
	return &DocumentHandler{service: service, logger: log}
}

// Upload ingests a PDF from a multipart form.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid file upload", err)
		return
	}
	defer file.Close()

	result, err := h.service.Ingest(c.Request.Context(), file, header.Filename)
	if err != nil {
		h.handleError(c, statusFor(err), "Failed to process document", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "PDF processed and indexed successfully",
		"file_id":  result.DocumentID,
		"filename": result.Filename,
		"chunks":   result.ChunkCount,
		"pages":    result.PageCount,
	})
}

// Ask answers a question against one document.
func (h *DocumentHandler) Ask(c *gin.Context) {
	documentID := c.Param("id")

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, "Question is required", err)
		return
	}

	answer, err := h.service.Ask(c.Request.Context(), documentID, req.Question)
	if err != nil {
		h.handleError(c, statusFor(err), "Failed to generate answer", err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// Summarize produces (or joins the in-flight production of) a
// whole-document summary.
func (h *DocumentHandler) Summarize(c *gin.Context) {
	documentID := c.Param("id")

	summary, err := h.service.Summarize(c.Request.Context(), documentID)
	if err != nil {
		h.handleError(c, statusFor(err), "Failed to generate summary", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file_id":  summary.DocumentID,
		"filename": summary.Filename,
		"summary":  summary.FinalSummary,
		"stats": gin.H{
			"total_chunks": summary.TotalChunks,
			"segments":     summary.SegmentCount,
			"pages":        summary.MaxPage,
		},
	})
}

// List returns every indexed document.
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.service.ListDocuments(c.Request.Context())
	if err != nil {
		h.handleError(c, statusFor(err), "Failed to list documents", err)
		return
	}

	totalChunks := 0
	for _, d := range docs {
		totalChunks += d.ChunkCount
	}

	c.JSON(http.StatusOK, gin.H{
		"total_documents": len(docs),
		"total_chunks":    totalChunks,
		"documents":       docs,
	})
}

// Delete removes a document's chunks and its summary record.
func (h *DocumentHandler) Delete(c *gin.Context) {
	documentID := c.Param("id")

	found, err := h.service.Delete(c.Request.Context(), documentID)
	if err != nil {
		h.handleError(c, statusFor(err), "Failed to delete document", err)
		return
	}
	if !found {
		h.handleError(c, http.StatusNotFound, "Document not found", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Document %s deleted", documentID),
	})
}

// FullText returns the concatenated per-segment summaries.
func (h *DocumentHandler) FullText(c *gin.Context) {
	documentID := c.Param("id")

	full, err := h.service.FullSummaryText(c.Request.Context(), documentID)
	if err != nil {
		if errors.Is(err, models.ErrNoSummaryYet) {
			h.handleError(c, http.StatusNotFound,
				"No summaries found for this document. Please generate a summary first.", err)
			return
		}
		h.handleError(c, statusFor(err), "Failed to retrieve summaries", err)
		return
	}

	c.JSON(http.StatusOK, full)
}

// Stats reports collection-level counters.
func (h *DocumentHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, statusFor(err), "Failed to get stats", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"collection": stats})
}

// Reset wipes every indexed document and its cached summaries.
func (h *DocumentHandler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context()); err != nil {
		h.handleError(c, statusFor(err), "Could not reset collection", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Collection reset successfully"})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUnsupportedFormat),
		errors.Is(err, models.ErrDocumentUnreadable):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrDocumentNotFound),
		errors.Is(err, models.ErrNoSummaryYet):
		return http.StatusNotFound
	case models.IsProviderError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *DocumentHandler) handleError(c *gin.Context, status int, message string, err error) {
	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{Message: message}
	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(status, response)
}
