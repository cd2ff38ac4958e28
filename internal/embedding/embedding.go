// Package embedding turns text into fixed-length vectors for retrieval.
package embedding

import "context"

// Provider converts free text into a numeric vector representation.
// The empty string is a valid input; callers use it for unranked
// retrieval.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}
