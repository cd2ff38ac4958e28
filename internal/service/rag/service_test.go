package rag

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage/internal/answer"
	"github.com/docsage/docsage/internal/completion"
	"github.com/docsage/docsage/internal/extract"
	"github.com/docsage/docsage/internal/index"
	"github.com/docsage/docsage/internal/models"
	"github.com/docsage/docsage/internal/summarize"
	"github.com/docsage/docsage/internal/tokencount"
	"github.com/docsage/docsage/internal/vectorstore/memory"
	"github.com/docsage/docsage/pkg/cache"
	"github.com/docsage/docsage/pkg/logger"
	"github.com/docsage/docsage/pkg/storage"
	"github.com/docsage/docsage/pkg/storage/local"
)

type stubDocument struct {
	pages []string
}

func (d *stubDocument) PageCount() int { return len(d.pages) }

func (d *stubDocument) PageText(page int) (string, error) { return d.pages[page-1], nil }

func (d *stubDocument) PageImage(int, int) (image.Image, error) {
	return nil, errors.New("no rendering in tests")
}

func (d *stubDocument) Close() error { return nil }

type stubOpener struct {
	pages []string
	err   error
}

func (o *stubOpener) Open([]byte) (extract.Document, error) {
	if o.err != nil {
		return nil, o.err
	}
	return &stubDocument{pages: o.pages}, nil
}

type noRecognizer struct{}

func (noRecognizer) Recognize(context.Context, image.Image, []string) (string, error) {
	return "", errors.New("unavailable")
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (stubEmbedder) Dimension() int { return 3 }

type stubProvider struct{ response string }

func (p *stubProvider) Complete(context.Context, string, completion.Options) (string, error) {
	return p.response, nil
}

// recordingSpool keeps spooled files in memory and records the keys
// each operation saw.
type recordingSpool struct {
	mu      sync.Mutex
	files   map[string][]byte
	stores  []string
	gets    []string
	deletes []string
}

func newRecordingSpool() *recordingSpool {
	return &recordingSpool{files: map[string][]byte{}}
}

func (s *recordingSpool) Store(_ context.Context, reader io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[filename] = data
	s.stores = append(s.stores, filename)
	return filename, nil
}

func (s *recordingSpool) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[key]
	if !ok {
		return nil, errors.New("no such key: " + key)
	}
	s.gets = append(s.gets, key)
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *recordingSpool) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	s.deletes = append(s.deletes, key)
	return nil
}

func (s *recordingSpool) CleanupBefore(context.Context, time.Time) error { return nil }

func pageText(word string) string {
	return strings.TrimSpace(strings.Repeat(word+" ", 20))
}

func newTestService(t *testing.T, opener extract.Opener) Service {
	t.Helper()
	log := logger.NewTestLogger()
	spool, err := local.NewLocalStorage(t.TempDir(), log)
	require.NoError(t, err)
	return newTestServiceWithSpool(t, opener, spool)
}

func newTestServiceWithSpool(t *testing.T, opener extract.Opener, spool storage.Storage) Service {
	t.Helper()
	log := logger.NewTestLogger()

	extractor := extract.New(opener, noRecognizer{}, extract.DefaultConfig(), log)
	idx := index.New(stubEmbedder{}, memory.New(), log)
	counter := tokencount.FixedCounter{CharsPerToken: 4}
	provider := &stubProvider{response: "a fine summary"}

	store, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	answerer := answer.NewEngine(idx, provider, counter, log)
	engine := summarize.NewEngine(idx, provider, counter, store, 0, log)

	return New(extractor, idx, answerer, summarize.NewRequestCoalescer(engine), store, spool, log)
}

func TestIngestReadsUploadBackFromSpool(t *testing.T) {
	spool := newRecordingSpool()
	svc := newTestServiceWithSpool(t, &stubOpener{pages: []string{pageText("word")}}, spool)

	result, err := svc.Ingest(context.Background(), strings.NewReader("%PDF-"), "book.pdf")
	require.NoError(t, err)

	// The upload is stored once, read back for extraction, and removed
	// after ingestion, all under the same key.
	key := result.DocumentID + ".pdf"
	assert.Equal(t, []string{key}, spool.stores)
	assert.Equal(t, []string{key}, spool.gets)
	assert.Equal(t, []string{key}, spool.deletes)
	assert.Empty(t, spool.files)
}

func TestIngestRejectsNonPDF(t *testing.T) {
	svc := newTestService(t, &stubOpener{})

	_, err := svc.Ingest(context.Background(), strings.NewReader("plain"), "notes.txt")
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

func TestIngestUnreadableDocument(t *testing.T) {
	svc := newTestService(t, &stubOpener{err: errors.New("broken file")})

	_, err := svc.Ingest(context.Background(), strings.NewReader("not a pdf"), "bad.pdf")
	assert.ErrorIs(t, err, models.ErrDocumentUnreadable)
}

func TestIngestListDeleteRoundTrip(t *testing.T) {
	svc := newTestService(t, &stubOpener{pages: []string{pageText("alpha"), pageText("bravo")}})
	ctx := context.Background()

	result, err := svc.Ingest(ctx, strings.NewReader("%PDF-1.4"), "book.pdf")
	require.NoError(t, err)
	assert.NotEmpty(t, result.DocumentID)
	assert.Equal(t, "book.pdf", result.Filename)
	assert.Equal(t, 2, result.PageCount)
	assert.Equal(t, 2, result.ChunkCount)

	docs, err := svc.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, result.DocumentID, docs[0].DocumentID)
	assert.Equal(t, "book.pdf", docs[0].Filename)
	assert.Equal(t, 2, docs[0].ChunkCount)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalChunks)
	assert.Equal(t, 1, stats.TotalDocuments)

	found, err := svc.Delete(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = svc.Delete(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.False(t, found)

	docs, err = svc.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestAskThroughService(t *testing.T) {
	svc := newTestService(t, &stubOpener{pages: []string{pageText("alpha")}})
	ctx := context.Background()

	result, err := svc.Ingest(ctx, strings.NewReader("%PDF-1.4"), "book.pdf")
	require.NoError(t, err)

	ans, err := svc.Ask(ctx, result.DocumentID, "what is alpha?")
	require.NoError(t, err)
	assert.Equal(t, "a fine summary", ans.Text)
	assert.NotEmpty(t, ans.Sources)
}

func TestFullSummaryTextLifecycle(t *testing.T) {
	svc := newTestService(t, &stubOpener{pages: []string{pageText("alpha")}})
	ctx := context.Background()

	result, err := svc.Ingest(ctx, strings.NewReader("%PDF-1.4"), "book.pdf")
	require.NoError(t, err)

	_, err = svc.FullSummaryText(ctx, result.DocumentID)
	assert.ErrorIs(t, err, models.ErrNoSummaryYet)

	summary, err := svc.Summarize(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "a fine summary", summary.FinalSummary)
	assert.Equal(t, "book.pdf", summary.Filename)

	full, err := svc.FullSummaryText(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Contains(t, full.Text, "[Summary 1]")
	assert.Contains(t, full.Text, "a fine summary")
	assert.Equal(t, summary.SegmentCount, full.SummaryCount)
}

func TestSummarizeUnknownDocument(t *testing.T) {
	svc := newTestService(t, &stubOpener{})

	_, err := svc.Summarize(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)
}

func TestDeleteDropsSummaryRecord(t *testing.T) {
	svc := newTestService(t, &stubOpener{pages: []string{pageText("alpha")}})
	ctx := context.Background()

	result, err := svc.Ingest(ctx, strings.NewReader("%PDF-1.4"), "book.pdf")
	require.NoError(t, err)
	_, err = svc.Summarize(ctx, result.DocumentID)
	require.NoError(t, err)

	found, err := svc.Delete(ctx, result.DocumentID)
	require.NoError(t, err)
	require.True(t, found)

	_, err = svc.FullSummaryText(ctx, result.DocumentID)
	assert.ErrorIs(t, err, models.ErrNoSummaryYet)
}

func TestResetDropsAllDocumentsAndSummaries(t *testing.T) {
	svc := newTestService(t, &stubOpener{pages: []string{pageText("alpha")}})
	ctx := context.Background()

	first, err := svc.Ingest(ctx, strings.NewReader("%PDF-1.4"), "one.pdf")
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, strings.NewReader("%PDF-1.4"), "two.pdf")
	require.NoError(t, err)
	_, err = svc.Summarize(ctx, first.DocumentID)
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx))

	docs, err := svc.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
	_, err = svc.FullSummaryText(ctx, first.DocumentID)
	assert.ErrorIs(t, err, models.ErrNoSummaryYet)
}
