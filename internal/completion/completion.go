// Package completion wraps the text-generation backend.
package completion

import "context"

// Options tune a single generation call.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Provider sends one prompt and returns the generated text. Failures
// include timeouts, non-2xx responses and malformed payloads.
type Provider interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}
