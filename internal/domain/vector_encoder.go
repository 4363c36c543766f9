package domain

import (
	"context"
)

// VectorEncoder defines the interface for generating embeddings.
// Implementations return an error rather than a partial vector; callers
// treat any error as "no embedding available" and fall back to keyword
// search.
type VectorEncoder interface {
	// Encode embeds a single text.
	Encode(ctx context.Context, text string) ([]float32, error)

	// EncodeBatch embeds several texts in one call. Best effort: the result
	// is index-aligned with the input, with nil entries for texts the
	// provider dropped.
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector width the encoder produces.
	Dimensions() int
}
