// Package rag wires extraction, indexing, summarization and answering
// into the document service the HTTP layer exposes.
package rag

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/docsage/docsage/internal/answer"
	"github.com/docsage/docsage/internal/extract"
	"github.com/docsage/docsage/internal/index"
	"github.com/docsage/docsage/internal/models"
	"github.com/docsage/docsage/internal/summarize"
	"github.com/docsage/docsage/pkg/cache"
	"github.com/docsage/docsage/pkg/logger"
	"github.com/docsage/docsage/pkg/storage"
)

// Service is the document-processing surface consumed by api/handlers.
type Service interface {
	Ingest(ctx context.Context, r io.Reader, filename string) (*models.IngestResult, error)
	Ask(ctx context.Context, documentID, question string) (*models.Answer, error)
	Summarize(ctx context.Context, documentID string) (*models.Summary, error)
	ListDocuments(ctx context.Context) ([]models.DocumentInfo, error)
	Delete(ctx context.Context, documentID string) (bool, error)
	FullSummaryText(ctx context.Context, documentID string) (*models.FullText, error)
	Stats(ctx context.Context) (*models.CollectionStats, error)
	Reset(ctx context.Context) error
}

type service struct {
	extractor  *extract.ChunkExtractor
	index      *index.RetrievalIndex
	answerer   *answer.Engine
	summarizer *summarize.RequestCoalescer
	store      cache.Cache
	spool      storage.Storage
	log        logger.Logger
}

func New(
	extractor *extract.ChunkExtractor,
	idx *index.RetrievalIndex,
	answerer *answer.Engine,
	summarizer *summarize.RequestCoalescer,
	store cache.Cache,
	spool storage.Storage,
	log logger.Logger,
) Service {
	return &service{
		extractor:  extractor,
		index:      idx,
		answerer:   answerer,
		summarizer: summarizer,
		store:      store,
		spool:      spool,
		log:        log,
	}
}

func (s *service) Ingest(ctx context.Context, r io.Reader, filename string) (*models.IngestResult, error) {
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return nil, models.ErrUnsupportedFormat
	}

	documentID := uuid.New().String()

	// Spool the raw upload while it is being processed, then drop it.
	// Extraction reads the spooled copy back, so the spool is the one
	// authoritative copy of the upload.
	spoolKey, err := s.spool.Store(ctx, r, documentID+".pdf")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.spool.Delete(context.WithoutCancel(ctx), spoolKey); err != nil {
			s.log.Warn("failed to remove spooled upload",
				logger.String("key", spoolKey),
				logger.Error(err))
		}
	}()

	spooled, err := s.spool.Get(ctx, spoolKey)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(spooled)
	spooled.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read spooled upload: %w", err)
	}

	chunks, pages, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return nil, err
	}

	inserted, err := s.index.Insert(ctx, documentID, filename, chunks)
	if err != nil {
		return nil, err
	}

	s.log.Info("document ingested",
		logger.String("document_id", documentID),
		logger.String("filename", filename),
		logger.Int("pages", pages),
		logger.Int("chunks", inserted))

	return &models.IngestResult{
		DocumentID: documentID,
		Filename:   filename,
		ChunkCount: inserted,
		PageCount:  pages,
	}, nil
}

func (s *service) Ask(ctx context.Context, documentID, question string) (*models.Answer, error) {
	return s.answerer.Ask(ctx, documentID, question)
}

func (s *service) Summarize(ctx context.Context, documentID string) (*models.Summary, error) {
	return s.summarizer.Summarize(ctx, documentID)
}

func (s *service) ListDocuments(ctx context.Context) ([]models.DocumentInfo, error) {
	return s.index.ListDocuments(ctx)
}

func (s *service) Delete(ctx context.Context, documentID string) (bool, error) {
	found, err := s.index.Delete(ctx, documentID)
	if err != nil {
		return false, err
	}
	if found {
		if err := s.store.Delete(ctx, documentID); err != nil {
			s.log.Warn("failed to drop summary record",
				logger.String("document_id", documentID),
				logger.Error(err))
		}
	}
	return found, nil
}

// FullSummaryText concatenates the persisted per-segment summaries of
// a document. It requires a prior successful Summarize call.
func (s *service) FullSummaryText(ctx context.Context, documentID string) (*models.FullText, error) {
	var record models.SummaryRecord
	found, err := s.store.Get(ctx, documentID, &record)
	if err != nil {
		return nil, err
	}
	if !found || len(record.Summaries) == 0 {
		return nil, models.ErrNoSummaryYet
	}

	parts := make([]string, len(record.Summaries))
	for i, summary := range record.Summaries {
		parts[i] = fmt.Sprintf("[Summary %d]\n%s", i+1, strings.TrimSpace(summary))
	}

	return &models.FullText{
		DocumentID:   documentID,
		Filename:     record.Filename,
		Text:         strings.Join(parts, "\n\n"),
		SummaryCount: len(record.Summaries),
	}, nil
}

// Reset drops every indexed document and its summary record.
func (s *service) Reset(ctx context.Context) error {
	docs, err := s.index.ListDocuments(ctx)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if _, err := s.index.Delete(ctx, doc.DocumentID); err != nil {
			return err
		}
		if err := s.store.Delete(ctx, doc.DocumentID); err != nil {
			s.log.Warn("failed to drop summary record",
				logger.String("document_id", doc.DocumentID),
				logger.Error(err))
		}
	}
	s.log.Info("collection reset", logger.Int("documents", len(docs)))
	return nil
}

func (s *service) Stats(ctx context.Context) (*models.CollectionStats, error) {
	stats, err := s.index.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
