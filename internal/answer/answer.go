// Package answer implements grounded question answering over an
// indexed document: retrieval, context assembly under a token budget,
// a strict-grounding completion, and a keyword fallback for questions
// the model reports as unanswerable.
package answer

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/docsage/docsage/internal/completion"
	"github.com/docsage/docsage/internal/index"
	"github.com/docsage/docsage/internal/models"
	"github.com/docsage/docsage/internal/textclean"
	"github.com/docsage/docsage/internal/tokencount"
	"github.com/docsage/docsage/pkg/logger"
)

const (
	retrievalTopK    = 50
	maxContextTokens = 6000

	answerTemperature = 0.0
	answerMaxTokens   = 512

	maxFallbackSnippets = 6
	maxSnippetChars     = 300
	sourcePreviewChars  = 200

	// NoInformationFound is returned when retrieval yields nothing for
	// the document.
	NoInformationFound = "No relevant information found in the document."
)

const promptFormat = `You are an assistant that answers questions based SOLELY on the provided context.

CONTEXT (document fragments):
%s

INSTRUCTIONS:
- Use the context information to answer the question.
- If the context contains relevant information, answer with it, indicating the page in brackets [Page X].
- If the context partially mentions the topic, you can say "The text mentions [topic] on pages..." and summarize what it says.
- If there is NOTHING in the context that answers the question, respond with "I couldn't find this information in the text."
- Do NOT invent anything that is not in the context.

QUESTION: %s

ANSWER:`

// notFoundPhrases mark a model response that declined to answer; any of
// them triggers the keyword fallback.
var notFoundPhrases = []string{
	"couldn't find",
	"could not find",
	"couldn't locate",
}

var termRE = regexp.MustCompile(`\w{3,}`)

// Engine answers questions against one document's indexed chunks.
type Engine struct {
	index    *index.RetrievalIndex
	provider completion.Provider
	counter  tokencount.Counter
	log      logger.Logger
}

func NewEngine(idx *index.RetrievalIndex, provider completion.Provider, counter tokencount.Counter, log logger.Logger) *Engine {
	return &Engine{index: idx, provider: provider, counter: counter, log: log}
}

func (e *Engine) Ask(ctx context.Context, documentID, question string) (*models.Answer, error) {
	results, err := e.index.Query(ctx, question, retrievalTopK, documentID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &models.Answer{
			Question: question,
			Text:     NoInformationFound,
			Sources:  []models.Source{},
		}, nil
	}

	contextText, included := e.assembleContext(results)
	e.log.Debug("assembled answer context",
		logger.String("document_id", documentID),
		logger.Int("chunks", included))

	out, err := e.provider.Complete(ctx, fmt.Sprintf(promptFormat, contextText, question), completion.Options{
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(out)
	if declinesToAnswer(text) {
		if fallback := keywordFallback(question, results); fallback != "" {
			text = fallback
		}
	}

	return &models.Answer{
		Question: question,
		Text:     text,
		Sources:  buildSources(results),
	}, nil
}

// assembleContext packs the highest-similarity chunks first until the
// token ceiling is reached; the last chunk may enter truncated to the
// remaining budget.
func (e *Engine) assembleContext(results []models.RetrievalResult) (string, int) {
	ordered := make([]models.RetrievalResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Similarity > ordered[j].Similarity
	})

	var lines []string
	total := 0
	for _, r := range ordered {
		text := r.Text
		tok := e.counter.Count(text)
		if total+tok > maxContextTokens {
			remaining := maxContextTokens - total
			if remaining > 0 {
				text = truncateRunes(text, remaining*4)
				lines = append(lines, fmt.Sprintf("[Page %d]: %s", r.Metadata.Page, text))
			}
			break
		}
		lines = append(lines, fmt.Sprintf("[Page %d]: %s", r.Metadata.Page, text))
		total += tok
	}
	return strings.Join(lines, "\n\n"), len(lines)
}

func declinesToAnswer(text string) bool {
	low := strings.ToLower(text)
	for _, phrase := range notFoundPhrases {
		if strings.Contains(low, phrase) {
			return true
		}
	}
	return false
}

// keywordFallback scans the retrieved chunks for literal question terms
// and returns matching passages, or "" when nothing matches.
func keywordFallback(question string, results []models.RetrievalResult) string {
	terms := termRE.FindAllString(strings.ToLower(question), -1)
	if len(terms) == 0 {
		return ""
	}

	var passages []string
	for _, r := range results {
		low := strings.ToLower(r.Text)
		if !containsAny(low, terms) {
			continue
		}
		snippet := textclean.CleanForDisplay(r.Text)
		if utf8.RuneCountInString(snippet) > maxSnippetChars {
			snippet = truncateRunes(snippet, maxSnippetChars)
			if cut := strings.LastIndex(snippet, " "); cut > 0 {
				snippet = snippet[:cut]
			}
			snippet += "..."
		}
		passages = append(passages, fmt.Sprintf("[Page %d]: %s", r.Metadata.Page, snippet))
		if len(passages) >= maxFallbackSnippets {
			break
		}
	}
	if len(passages) == 0 {
		return ""
	}
	return "I found the following passages in the document that mention your query:\n\n" +
		strings.Join(passages, "\n\n")
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func buildSources(results []models.RetrievalResult) []models.Source {
	sources := make([]models.Source, len(results))
	for i, r := range results {
		preview := r.Text
		if utf8.RuneCountInString(preview) > sourcePreviewChars {
			preview = truncateRunes(preview, sourcePreviewChars) + "..."
		}
		sources[i] = models.Source{
			Page:        r.Metadata.Page,
			TextPreview: preview,
			Similarity:  math.Round(r.Similarity*1000) / 1000,
		}
	}
	return sources
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
