package models

// Chunk is a bounded unit of page-derived text produced by extraction.
// Chunks are immutable after ingestion; ordering by (Page, Sequence)
// reconstructs document order.
type Chunk struct {
	Text     string `json:"text"`
	Page     int    `json:"page"`
	Sequence int    `json:"sequence"`
}

// ChunkMetadata is stored alongside each embedding in the vector index.
type ChunkMetadata struct {
	DocumentID  string `json:"file_id"`
	Filename    string `json:"filename"`
	Page        int    `json:"page"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// RetrievalResult is a transient query hit. Similarity is 1 - cosine
// distance, so higher is closer.
type RetrievalResult struct {
	ChunkID    string        `json:"id"`
	Text       string        `json:"text"`
	Metadata   ChunkMetadata `json:"metadata"`
	Similarity float64       `json:"similarity"`
}

// SummaryRecord is the durable per-document summarization artifact,
// keyed by document id in the cache. Field names are stable across
// versions.
type SummaryRecord struct {
	DocumentID string   `json:"file_id"`
	Filename   string   `json:"filename"`
	Summaries  []string `json:"summaries"`
}

// DocumentInfo is a listing entry derived from indexed chunk metadata.
// Documents have no persistence of their own.
type DocumentInfo struct {
	DocumentID string `json:"file_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunks"`
}

// CollectionStats aggregates over all stored chunk metadata.
type CollectionStats struct {
	Collection     string `json:"collection"`
	TotalChunks    int    `json:"total_chunks"`
	TotalDocuments int    `json:"total_documents"`
}

// IngestResult is returned by a successful ingestion.
type IngestResult struct {
	DocumentID string `json:"file_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunks"`
	PageCount  int    `json:"pages"`
}

// Source points a caller at the passage an answer was grounded on.
type Source struct {
	Page        int     `json:"page"`
	TextPreview string  `json:"text_preview"`
	Similarity  float64 `json:"similarity"`
}

// Answer is the grounded-QA response for a single question.
type Answer struct {
	Question string   `json:"question"`
	Text     string   `json:"answer"`
	Sources  []Source `json:"sources"`
}

// Summary is the whole-document summarization response.
type Summary struct {
	DocumentID   string `json:"file_id"`
	Filename     string `json:"filename"`
	FinalSummary string `json:"summary"`
	SegmentCount int    `json:"segments"`
	TotalChunks  int    `json:"total_chunks"`
	MaxPage      int    `json:"pages"`
}

// FullText is the concatenation of a document's per-segment summaries.
type FullText struct {
	DocumentID   string `json:"file_id"`
	Filename     string `json:"filename"`
	Text         string `json:"full_text"`
	SummaryCount int    `json:"total_summaries"`
}
