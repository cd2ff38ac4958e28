// Package vectorstore defines the vector index capability consumed by
// the retrieval engine, with interchangeable backends.
package vectorstore

import (
	"context"

	"github.com/docsage/docsage/internal/models"
)

// Record is one stored chunk: embedding, original text and metadata.
type Record struct {
	ID        string
	Embedding []float32
	Text      string
	Metadata  models.ChunkMetadata
}

// Hit is a query result. Distance is cosine distance; the retrieval
// layer derives similarity as 1 - Distance.
type Hit struct {
	Record
	Distance float64
}

// Index stores embeddings under a single collection created lazily with
// cosine distance. Implementations are safe for concurrent use and make
// a completed insert visible to subsequent queries.
type Index interface {
	// Insert stores a batch of records. The batch is written as one
	// unit insofar as the backend allows.
	Insert(ctx context.Context, records []Record) error

	// Query returns up to topK nearest records by cosine distance,
	// closest first. A non-empty documentID restricts results to
	// records whose metadata carries that document id.
	Query(ctx context.Context, vector []float32, topK int, documentID string) ([]Hit, error)

	// Delete removes every record belonging to documentID and returns
	// how many were removed.
	Delete(ctx context.Context, documentID string) (int, error)

	// Scan returns all stored records without their embeddings
	// populated; used for listings and statistics.
	Scan(ctx context.Context) ([]Record, error)

	Close() error
}
