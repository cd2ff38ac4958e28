package models

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced across the service boundary. Handlers map
// these to HTTP status codes; nothing else inspects error strings.
var (
	// ErrUnsupportedFormat: the input is not a processable document.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrDocumentUnreadable: the document could not be opened or parsed
	// at all. Single-page failures are recovered locally and never
	// produce this.
	ErrDocumentUnreadable = errors.New("document is unreadable")

	// ErrDocumentNotFound: no chunks exist for the requested document id.
	// Distinct from an empty-but-valid retrieval.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrNoSummaryYet: summarization was never run for the document.
	ErrNoSummaryYet = errors.New("no summary generated yet")
)

// ProviderError wraps a failure (including timeout) of an outbound
// embedding, completion or recognition call, with enough context to
// reproduce the call.
type ProviderError struct {
	Provider string // "embedding", "completion", "recognition"
	Op       string // logical operation, e.g. "segment_summary"
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider failed during %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError builds a ProviderError for the given backend call.
func NewProviderError(provider, op string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

// IsProviderError reports whether err is (or wraps) a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
