package summarize

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/docsage/docsage/internal/models"
)

// Summarizer is the engine surface the coalescer wraps.
type Summarizer interface {
	Summarize(ctx context.Context, documentID string) (*models.Summary, error)
}

// RequestCoalescer deduplicates concurrent summarization requests per
// document id: callers arriving while one is in flight share its result
// or its error. The in-flight entry is cleared as soon as the call
// settles, so a failed attempt is always retried fresh.
type RequestCoalescer struct {
	engine Summarizer
	group  singleflight.Group
}

func NewRequestCoalescer(engine Summarizer) *RequestCoalescer {
	return &RequestCoalescer{engine: engine}
}

// Summarize joins or starts the single in-flight summarization for the
// document. The shared execution runs detached from any one caller's
// context: a client that gives up must not cancel the work for the
// callers still waiting, and the summary record should reach the cache
// either way.
func (c *RequestCoalescer) Summarize(ctx context.Context, documentID string) (*models.Summary, error) {
	ch := c.group.DoChan(documentID, func() (any, error) {
		return c.engine.Summarize(context.WithoutCancel(ctx), documentID)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Summary), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
