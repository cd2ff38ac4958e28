// Package extract turns raw document bytes into ordered page chunks,
// falling back from native text extraction to image recognition per
// page.
package extract

import (
	"context"
	"image"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/docsage/docsage/internal/models"
	"github.com/docsage/docsage/internal/textclean"
	"github.com/docsage/docsage/pkg/logger"
)

// UnreadablePageText is emitted for a page that produced no usable text
// so page numbering stays contiguous for downstream sorting.
const UnreadablePageText = "[unreadable page]"

// Document gives page-level access to a parsed file. Pages are 1-based.
type Document interface {
	PageCount() int
	// PageText runs native text extraction; an empty string means the
	// page carries no extractable text layer.
	PageText(page int) (string, error)
	// PageImage renders the page to an image at the given DPI for
	// recognition.
	PageImage(page int, dpi int) (image.Image, error)
	Close() error
}

// Opener parses raw bytes into a Document. A parse failure means the
// whole document is unreadable.
type Opener interface {
	Open(data []byte) (Document, error)
}

// Recognizer extracts text from a page image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, languages []string) (string, error)
}

// Config bounds the extraction pipeline.
type Config struct {
	// MinLegibleChars is the native-extraction length below which the
	// page falls back to recognition.
	MinLegibleChars int
	// MinContentChars is the cleaned-text length below which the page
	// becomes an unreadable-page placeholder.
	MinContentChars int
	// MaxChunkChars bounds each emitted chunk.
	MaxChunkChars int
	// RenderDPI is the raster resolution for the recognition fallback.
	// Higher DPI trades latency for accuracy.
	RenderDPI int
	// Languages are passed combined to the recognizer.
	Languages []string
	// MaxConcurrentPages bounds parallel page processing.
	MaxConcurrentPages int
}

// DefaultConfig mirrors the thresholds the pipeline was tuned with.
func DefaultConfig() Config {
	return Config{
		MinLegibleChars:    20,
		MinContentChars:    50,
		MaxChunkChars:      3000,
		RenderDPI:          200,
		Languages:          []string{"spa", "eng"},
		MaxConcurrentPages: 4,
	}
}

// ChunkExtractor drives per-page extraction with recognition fallback
// and quality gating.
type ChunkExtractor struct {
	opener     Opener
	recognizer Recognizer
	config     Config
	logger     logger.Logger
}

// New builds a ChunkExtractor.
func New(opener Opener, recognizer Recognizer, cfg Config, log logger.Logger) *ChunkExtractor {
	if cfg.MaxConcurrentPages <= 0 {
		cfg.MaxConcurrentPages = 1
	}
	return &ChunkExtractor{
		opener:     opener,
		recognizer: recognizer,
		config:     cfg,
		logger:     log.Named("extract"),
	}
}

// Extract produces the ordered chunk list and the page count. Every
// page yields at least one chunk (placeholder or real); only a total
// parse failure aborts the document.
func (e *ChunkExtractor) Extract(ctx context.Context, data []byte) ([]models.Chunk, int, error) {
	doc, err := e.opener.Open(data)
	if err != nil {
		e.logger.Error("failed to open document", logger.Error(err))
		return nil, 0, models.ErrDocumentUnreadable
	}
	defer doc.Close()

	numPages := doc.PageCount()
	if numPages == 0 {
		return nil, 0, models.ErrDocumentUnreadable
	}

	perPage := make([][]models.Chunk, numPages)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.MaxConcurrentPages)
	for i := 0; i < numPages; i++ {
		page := i + 1
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perPage[page-1] = e.extractPage(gctx, doc, page)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	chunks := make([]models.Chunk, 0, numPages)
	for _, pageChunks := range perPage {
		chunks = append(chunks, pageChunks...)
	}
	return chunks, numPages, nil
}

// extractPage never fails: any page-level error degrades to the
// unreadable-page placeholder.
func (e *ChunkExtractor) extractPage(ctx context.Context, doc Document, page int) []models.Chunk {
	text, err := doc.PageText(page)
	if err != nil {
		e.logger.Warn("native extraction failed",
			logger.Int("page", page),
			logger.Error(err),
		)
		text = ""
	}

	if len(strings.TrimSpace(text)) < e.config.MinLegibleChars {
		if recognized := e.recognizePage(ctx, doc, page); recognized != "" {
			text = recognized
		}
	}

	cleaned := textclean.Clean(text)
	if len(cleaned) < e.config.MinContentChars {
		return []models.Chunk{{Text: UnreadablePageText, Page: page, Sequence: 0}}
	}

	return splitChunks(cleaned, page, e.config.MaxChunkChars)
}

func (e *ChunkExtractor) recognizePage(ctx context.Context, doc Document, page int) string {
	img, err := doc.PageImage(page, e.config.RenderDPI)
	if err != nil {
		e.logger.Warn("failed to render page",
			logger.Int("page", page),
			logger.Error(err),
		)
		return ""
	}
	text, err := e.recognizer.Recognize(ctx, img, e.config.Languages)
	if err != nil {
		e.logger.Warn("recognition failed",
			logger.Int("page", page),
			logger.Error(err),
		)
		return ""
	}
	return text
}

// splitChunks cuts page text into bounded pieces with monotonically
// increasing sequence indexes.
func splitChunks(text string, page, maxChars int) []models.Chunk {
	runes := []rune(text)
	chunks := make([]models.Chunk, 0, len(runes)/maxChars+1)
	for start, seq := 0, 0; start < len(runes); start, seq = start+maxChars, seq+1 {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			Text:     string(runes[start:end]),
			Page:     page,
			Sequence: seq,
		})
	}
	return chunks
}
