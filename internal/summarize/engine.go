package summarize

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/docsage/docsage/internal/completion"
	"github.com/docsage/docsage/internal/index"
	"github.com/docsage/docsage/internal/models"
	"github.com/docsage/docsage/internal/tokencount"
	"github.com/docsage/docsage/pkg/cache"
	"github.com/docsage/docsage/pkg/logger"
)

const (
	// retrievalTopK is large enough to pull every chunk of a document
	// in one query.
	retrievalTopK = 100

	// maxCombineTokens bounds the labeled input of one reduction call.
	// Above it the parts are split at the midpoint and reduced
	// recursively.
	maxCombineTokens = 3500

	segmentTemperature = 0.1
	segmentMaxTokens   = 800
	combineTemperature = 0.2
	combineMaxTokens   = 2000
)

const segmentPromptFormat = `Provide a detailed summary of the following book fragment. Capture the main events, characters, and important details. Be thorough but do not invent anything. Use only the information present in the text.

Fragment:
%s

Detailed summary:`

const combinePromptFormat = `From the following detailed summaries of a book (in order), write a comprehensive final summary. Capture the overall plot, character arcs, and key themes. Be thorough and coherent. Do not add anything not present in the summaries.

%s

Comprehensive final summary:`

// SummarizationEngine produces a whole-document summary by map-reduce:
// per-segment summaries first, then recursive pairwise reduction into a
// final summary. Per-segment summaries are persisted to the cache so a
// later full-text request does not recompute them.
type SummarizationEngine struct {
	index          *index.RetrievalIndex
	provider       completion.Provider
	counter        tokencount.Counter
	planner        *SegmentPlanner
	store          cache.Cache
	segmentTimeout time.Duration
	log            logger.Logger
}

// NewEngine builds an engine. segmentTimeout bounds each per-segment
// completion call; zero disables the bound. Reduction calls run under
// the caller's context only.
func NewEngine(idx *index.RetrievalIndex, provider completion.Provider, counter tokencount.Counter, store cache.Cache, segmentTimeout time.Duration, log logger.Logger) *SummarizationEngine {
	return &SummarizationEngine{
		index:          idx,
		provider:       provider,
		counter:        counter,
		planner:        NewSegmentPlanner(counter),
		store:          store,
		segmentTimeout: segmentTimeout,
		log:            log,
	}
}

func (e *SummarizationEngine) Summarize(ctx context.Context, documentID string) (*models.Summary, error) {
	results, err := e.index.Query(ctx, "", retrievalTopK, documentID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, models.ErrDocumentNotFound
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Metadata, results[j].Metadata
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		return a.ChunkIndex < b.ChunkIndex
	})

	filename := results[0].Metadata.Filename
	maxPage := 0
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
		if r.Metadata.Page > maxPage {
			maxPage = r.Metadata.Page
		}
	}

	segments := e.planner.Plan(texts)
	e.log.Info("planned summarization segments",
		logger.String("document_id", documentID),
		logger.Int("chunks", len(results)),
		logger.Int("segments", len(segments)))

	summaries := make([]string, len(segments))
	for i, segment := range segments {
		out, err := e.summarizeSegment(ctx, segment)
		if err != nil {
			e.log.Error("segment summarization failed",
				logger.String("document_id", documentID),
				logger.Int("segment", i+1),
				logger.Error(err))
			summaries[i] = fmt.Sprintf("[Error summarizing segment %d]", i+1)
			continue
		}
		summaries[i] = out
	}

	final := e.reduce(ctx, documentID, summaries)

	record := models.SummaryRecord{
		DocumentID: documentID,
		Filename:   filename,
		Summaries:  summaries,
	}
	if err := e.store.Put(ctx, documentID, record); err != nil {
		e.log.Warn("could not persist summary record",
			logger.String("document_id", documentID),
			logger.Error(err))
	}

	return &models.Summary{
		DocumentID:   documentID,
		Filename:     filename,
		FinalSummary: final,
		SegmentCount: len(segments),
		TotalChunks:  len(results),
		MaxPage:      maxPage,
	}, nil
}

func (e *SummarizationEngine) summarizeSegment(ctx context.Context, segment string) (string, error) {
	if e.segmentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.segmentTimeout)
		defer cancel()
	}
	return e.provider.Complete(ctx, fmt.Sprintf(segmentPromptFormat, segment), completion.Options{
		Temperature: segmentTemperature,
		MaxTokens:   segmentMaxTokens,
	})
}

// reduce combines labeled parts into one summary. When the labeled
// input exceeds the combine ceiling, the parts are halved, each half
// reduced, and the two halves reduced once more.
func (e *SummarizationEngine) reduce(ctx context.Context, documentID string, parts []string) string {
	labeled := make([]string, len(parts))
	for i, part := range parts {
		labeled[i] = fmt.Sprintf("PART %d:\n%s", i+1, part)
	}
	combined := strings.Join(labeled, "\n\n")

	if len(parts) <= 1 || e.counter.Count(combined) < maxCombineTokens {
		out, err := e.provider.Complete(ctx, fmt.Sprintf(combinePromptFormat, combined), completion.Options{
			Temperature: combineTemperature,
			MaxTokens:   combineMaxTokens,
		})
		if err != nil {
			e.log.Error("final summary generation failed",
				logger.String("document_id", documentID),
				logger.Error(err))
			return "Error generating final summary."
		}
		return out
	}

	mid := len(parts) / 2
	first := e.reduce(ctx, documentID, parts[:mid])
	second := e.reduce(ctx, documentID, parts[mid:])
	return e.reduce(ctx, documentID, []string{first, second})
}
