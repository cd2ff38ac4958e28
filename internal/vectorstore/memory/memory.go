// Package memory provides a brute-force in-memory vector index using
// cosine distance. It backs tests and single-node deployments where an
// external vector database is not worth operating.
package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/docsage/docsage/internal/vectorstore"
)

// Index keeps all records in a slice; queries scan linearly. Ties keep
// insertion order, which gives the deterministic return order callers
// rely on for unranked retrieval.
type Index struct {
	mu      sync.RWMutex
	records []vectorstore.Record
}

// New returns an empty in-memory index.
func New() *Index { return &Index{} }

func (s *Index) Insert(ctx context.Context, records []vectorstore.Record) error {
	for _, r := range records {
		if len(r.Embedding) == 0 {
			return errors.New("record has no embedding")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

func (s *Index) Query(ctx context.Context, vector []float32, topK int, documentID string) ([]vectorstore.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}

	hits := make([]vectorstore.Hit, 0, len(s.records))
	for _, r := range s.records {
		if documentID != "" && r.Metadata.DocumentID != documentID {
			continue
		}
		hits = append(hits, vectorstore.Hit{
			Record:   r,
			Distance: cosineDistance(vector, r.Embedding),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

func (s *Index) Delete(ctx context.Context, documentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	removed := 0
	for _, r := range s.records {
		if r.Metadata.DocumentID == documentID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return removed, nil
}

func (s *Index) Scan(ctx context.Context) ([]vectorstore.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]vectorstore.Record, len(s.records))
	for i, r := range s.records {
		out[i] = vectorstore.Record{ID: r.ID, Text: r.Text, Metadata: r.Metadata}
	}
	return out, nil
}

func (s *Index) Close() error { return nil }

// cosineDistance is 1 - cosine similarity. A zero-norm vector (the
// embedding of an empty query on some providers) is treated as
// equidistant from everything.
func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
