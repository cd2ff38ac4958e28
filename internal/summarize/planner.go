package summarize

import (
	"strings"

	"github.com/docsage/docsage/internal/tokencount"
)

// MaxSegmentTokens is the packing ceiling for one summarization segment.
const MaxSegmentTokens = 500

// SegmentPlanner packs ordered chunk texts into segments greedily: a
// chunk that would push the running segment over the token ceiling
// starts a new one. A single oversized chunk still forms its own
// segment, so no text is ever dropped.
type SegmentPlanner struct {
	counter   tokencount.Counter
	maxTokens int
}

func NewSegmentPlanner(counter tokencount.Counter) *SegmentPlanner {
	return &SegmentPlanner{counter: counter, maxTokens: MaxSegmentTokens}
}

func (p *SegmentPlanner) Plan(texts []string) []string {
	var segments []string
	var current []string
	tokens := 0

	for _, text := range texts {
		tok := p.counter.Count(text)
		if tokens+tok > p.maxTokens && len(current) > 0 {
			segments = append(segments, strings.Join(current, " "))
			current = []string{text}
			tokens = tok
		} else {
			current = append(current, text)
			tokens += tok
		}
	}
	if len(current) > 0 {
		segments = append(segments, strings.Join(current, " "))
	}
	return segments
}
