// Package pgvector backs the vector index with PostgreSQL and the
// pgvector extension.
package pgvector

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"

	"github.com/docsage/docsage/internal/vectorstore"
)

// Index stores one collection per table. The table and its ivfflat
// cosine index are created lazily on first use, so every insert and
// query against the collection shares the same distance metric.
type Index struct {
	pool       *pgxpool.Pool
	collection string
	dimension  int
}

// New connects to Postgres and ensures the collection table exists.
func New(ctx context.Context, connStr, collection string, dimension int) (*Index, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	idx := &Index{pool: pool, collection: collection, dimension: dimension}
	if err := idx.ensureCollection(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return idx, nil
}

func (s *Index) ensureCollection(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS %[1]s (
		id TEXT PRIMARY KEY,
		file_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		page INT NOT NULL,
		chunk_index INT NOT NULL,
		total_chunks INT NOT NULL,
		content TEXT NOT NULL,
		embedding vector(%[2]d)
	);

	CREATE INDEX IF NOT EXISTS idx_%[1]s_embedding ON %[1]s
		USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);
	CREATE INDEX IF NOT EXISTS idx_%[1]s_file_id ON %[1]s(file_id);
	`, s.collection, s.dimension)

	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}
	return nil
}

// Insert writes the whole batch in one transaction so that either all
// chunks of a document become visible or none do.
func (s *Index) Insert(ctx context.Context, records []vectorstore.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin insert batch: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	query := fmt.Sprintf(`
	INSERT INTO %s (id, file_id, filename, page, chunk_index, total_chunks, content, embedding)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, s.collection)
	for _, r := range records {
		batch.Queue(query,
			r.ID, r.Metadata.DocumentID, r.Metadata.Filename, r.Metadata.Page,
			r.Metadata.ChunkIndex, r.Metadata.TotalChunks, r.Text, toPgVector(r.Embedding),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}
	return tx.Commit(ctx)
}

func toPgVector(v []float32) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%f", x)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (s *Index) Query(ctx context.Context, vector []float32, topK int, documentID string) ([]vectorstore.Hit, error) {
	if topK <= 0 {
		topK = 5
	}
	vec := pgv.NewVector(vector)

	query := fmt.Sprintf(`
	SELECT id, file_id, filename, page, chunk_index, total_chunks, content,
	       embedding <=> $1 AS distance
	FROM %s
	`, s.collection)
	args := []any{vec}
	if documentID != "" {
		query += " WHERE file_id = $3"
		args = append(args, topK, documentID)
	} else {
		args = append(args, topK)
	}
	query += " ORDER BY embedding <=> $1 LIMIT $2"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	defer rows.Close()

	var hits []vectorstore.Hit
	for rows.Next() {
		var h vectorstore.Hit
		if err := rows.Scan(
			&h.ID, &h.Metadata.DocumentID, &h.Metadata.Filename, &h.Metadata.Page,
			&h.Metadata.ChunkIndex, &h.Metadata.TotalChunks, &h.Text, &h.Distance,
		); err != nil {
			return nil, fmt.Errorf("failed to scan hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (s *Index) Delete(ctx context.Context, documentID string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE file_id = $1", s.collection), documentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete document chunks: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Index) Scan(ctx context.Context) ([]vectorstore.Record, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
	SELECT id, file_id, filename, page, chunk_index, total_chunks, content
	FROM %s ORDER BY file_id, page, chunk_index
	`, s.collection))
	if err != nil {
		return nil, fmt.Errorf("failed to scan collection: %w", err)
	}
	defer rows.Close()

	var records []vectorstore.Record
	for rows.Next() {
		var r vectorstore.Record
		if err := rows.Scan(
			&r.ID, &r.Metadata.DocumentID, &r.Metadata.Filename, &r.Metadata.Page,
			&r.Metadata.ChunkIndex, &r.Metadata.TotalChunks, &r.Text,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Index) Close() error {
	s.pool.Close()
	return nil
}
