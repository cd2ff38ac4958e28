// Package index owns embedding generation and the per-collection
// vector store behind document retrieval.
package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/docsage/docsage/internal/embedding"
	"github.com/docsage/docsage/internal/models"
	"github.com/docsage/docsage/internal/vectorstore"
	"github.com/docsage/docsage/pkg/logger"
)

// CollectionName is the single collection every insert and query runs
// against. The backend creates it lazily with cosine distance; mixing
// metrics within a collection would corrupt ranking.
const CollectionName = "pdf_documents"

const maxEmbedWorkers = 4

// RetrievalIndex pairs an embedding provider with a vector store.
type RetrievalIndex struct {
	embedder embedding.Provider
	store    vectorstore.Index
	logger   logger.Logger
}

// New builds a retrieval index over the given backend.
func New(embedder embedding.Provider, store vectorstore.Index, log logger.Logger) *RetrievalIndex {
	return &RetrievalIndex{
		embedder: embedder,
		store:    store,
		logger:   log.Named("index"),
	}
}

// Insert embeds every chunk and stores the batch. Embeddings are
// generated concurrently; the store write is a single batch so all
// chunks of a document become visible together. Returns the number of
// chunks inserted.
func (ri *RetrievalIndex) Insert(ctx context.Context, documentID, filename string, chunks []models.Chunk) (int, error) {
	records := make([]vectorstore.Record, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxEmbedWorkers)
	for i, chunk := range chunks {
		g.Go(func() error {
			vec, err := ri.embedder.Embed(gctx, chunk.Text)
			if err != nil {
				return models.NewProviderError("embedding", "insert", err)
			}
			records[i] = vectorstore.Record{
				ID:        fmt.Sprintf("%s_chunk_%d_%s", documentID, i, shortID()),
				Embedding: vec,
				Text:      chunk.Text,
				Metadata: models.ChunkMetadata{
					DocumentID:  documentID,
					Filename:    filename,
					Page:        chunk.Page,
					ChunkIndex:  i,
					TotalChunks: len(chunks),
				},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := ri.store.Insert(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to insert chunks: %w", err)
	}

	ri.logger.Info("chunks indexed",
		logger.String("documentId", documentID),
		logger.Int("chunks", len(chunks)),
	)
	return len(chunks), nil
}

// Query embeds the query text (the empty string is valid and yields the
// backend's deterministic order) and returns the topK nearest chunks,
// optionally restricted to one document. Similarity is 1 - distance.
func (ri *RetrievalIndex) Query(ctx context.Context, text string, topK int, documentID string) ([]models.RetrievalResult, error) {
	vec, err := ri.embedder.Embed(ctx, text)
	if err != nil {
		return nil, models.NewProviderError("embedding", "query", err)
	}

	hits, err := ri.store.Query(ctx, vec, topK, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	results := make([]models.RetrievalResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, models.RetrievalResult{
			ChunkID:    h.ID,
			Text:       h.Text,
			Metadata:   h.Metadata,
			Similarity: 1 - h.Distance,
		})
	}
	return results, nil
}

// Delete removes every chunk of the document and reports whether any
// existed. The owning document ceases to exist with its last chunk.
func (ri *RetrievalIndex) Delete(ctx context.Context, documentID string) (bool, error) {
	removed, err := ri.store.Delete(ctx, documentID)
	if err != nil {
		return false, fmt.Errorf("failed to delete document: %w", err)
	}
	if removed > 0 {
		ri.logger.Info("document deleted",
			logger.String("documentId", documentID),
			logger.Int("chunks", removed),
		)
	}
	return removed > 0, nil
}

// Stats counts stored chunks and distinct documents.
func (ri *RetrievalIndex) Stats(ctx context.Context) (models.CollectionStats, error) {
	records, err := ri.store.Scan(ctx)
	if err != nil {
		return models.CollectionStats{}, fmt.Errorf("failed to scan collection: %w", err)
	}
	docs := make(map[string]struct{})
	for _, r := range records {
		docs[r.Metadata.DocumentID] = struct{}{}
	}
	return models.CollectionStats{
		Collection:     CollectionName,
		TotalChunks:    len(records),
		TotalDocuments: len(docs),
	}, nil
}

// ListDocuments derives the document listing from stored chunk
// metadata, preserving first-seen order.
func (ri *RetrievalIndex) ListDocuments(ctx context.Context) ([]models.DocumentInfo, error) {
	records, err := ri.store.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan collection: %w", err)
	}

	seen := make(map[string]int)
	docs := make([]models.DocumentInfo, 0)
	for _, r := range records {
		id := r.Metadata.DocumentID
		if pos, ok := seen[id]; ok {
			docs[pos].ChunkCount++
			continue
		}
		seen[id] = len(docs)
		docs = append(docs, models.DocumentInfo{
			DocumentID: id,
			Filename:   r.Metadata.Filename,
			ChunkCount: 1,
		})
	}
	return docs, nil
}

func shortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
