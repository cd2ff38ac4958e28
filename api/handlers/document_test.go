package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage/internal/models"
	"github.com/docsage/docsage/pkg/logger"
)

type fakeService struct {
	ingestErr    error
	summarizeErr error
	deleteFound  bool
	resetCalls   int
	resetErr     error
}

func (s *fakeService) Ingest(_ context.Context, r io.Reader, filename string) (*models.IngestResult, error) {
	if s.ingestErr != nil {
		return nil, s.ingestErr
	}
	return &models.IngestResult{DocumentID: "doc-1", Filename: filename, ChunkCount: 3, PageCount: 2}, nil
}

func (s *fakeService) Ask(_ context.Context, documentID, question string) (*models.Answer, error) {
	return &models.Answer{Question: question, Text: "grounded answer", Sources: []models.Source{}}, nil
}

func (s *fakeService) Summarize(_ context.Context, documentID string) (*models.Summary, error) {
	if s.summarizeErr != nil {
		return nil, s.summarizeErr
	}
	return &models.Summary{DocumentID: documentID, Filename: "book.pdf", FinalSummary: "short", SegmentCount: 1, TotalChunks: 3, MaxPage: 2}, nil
}

func (s *fakeService) ListDocuments(context.Context) ([]models.DocumentInfo, error) {
	return []models.DocumentInfo{{DocumentID: "doc-1", Filename: "book.pdf", ChunkCount: 3}}, nil
}

func (s *fakeService) Delete(context.Context, string) (bool, error) {
	return s.deleteFound, nil
}

func (s *fakeService) FullSummaryText(context.Context, string) (*models.FullText, error) {
	return nil, models.ErrNoSummaryYet
}

func (s *fakeService) Stats(context.Context) (*models.CollectionStats, error) {
	return &models.CollectionStats{Collection: "pdf_documents", TotalChunks: 3, TotalDocuments: 1}, nil
}

func (s *fakeService) Reset(context.Context) error {
	s.resetCalls++
	return s.resetErr
}

func newTestRouter(svc *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDocumentHandler(svc, logger.NewTestLogger())
	r := gin.New()
	r.POST("/api/v1/documents", h.Upload)
	r.POST("/api/v1/documents/:id/ask", h.Ask)
	r.POST("/api/v1/documents/:id/summarize", h.Summarize)
	r.GET("/api/v1/documents", h.List)
	r.GET("/api/v1/documents/:id/full-text", h.FullText)
	r.DELETE("/api/v1/documents/:id", h.Delete)
	r.POST("/debug/reset", h.Reset)
	return r
}

func multipartBody(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestUploadSuccess(t *testing.T) {
	r := newTestRouter(&fakeService{})

	body, contentType := multipartBody(t, "book.pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "doc-1", resp["file_id"])
	assert.Equal(t, "book.pdf", resp["filename"])
}

func TestUploadUnsupportedFormat(t *testing.T) {
	r := newTestRouter(&fakeService{ingestErr: models.ErrUnsupportedFormat})

	body, contentType := multipartBody(t, "notes.txt")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskRequiresQuestion(t *testing.T) {
	r := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/doc-1/ask", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskReturnsAnswer(t *testing.T) {
	r := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/doc-1/ask", strings.NewReader(`{"question":"who?"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp models.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "grounded answer", resp.Text)
}

func TestSummarizeNotFound(t *testing.T) {
	r := newTestRouter(&fakeService{summarizeErr: models.ErrDocumentNotFound})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/ghost/summarize", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSummarizeProviderFailure(t *testing.T) {
	r := newTestRouter(&fakeService{summarizeErr: models.NewProviderError("ollama", "generate", io.ErrUnexpectedEOF)})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/doc-1/summarize", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDeleteNotFound(t *testing.T) {
	r := newTestRouter(&fakeService{deleteFound: false})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/ghost", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFullTextBeforeSummary(t *testing.T) {
	r := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/doc-1/full-text", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListDocuments(t *testing.T) {
	r := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		TotalDocuments int                   `json:"total_documents"`
		TotalChunks    int                   `json:"total_chunks"`
		Documents      []models.DocumentInfo `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalDocuments)
	assert.Equal(t, 3, resp.TotalChunks)
}

func TestResetCollection(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/debug/reset", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.resetCalls)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Collection reset successfully", resp["message"])
}

func TestResetCollectionFailure(t *testing.T) {
	r := newTestRouter(&fakeService{resetErr: errors.New("store down")})

	req := httptest.NewRequest(http.MethodPost, "/debug/reset", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
