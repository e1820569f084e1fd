// Package embeddings provides a swappable interface for text embedding generation.
package embeddings

import (
	"context"

	pgvector "github.com/pgvector/pgvector-go"
)

// Dimensions is the embedding vector size, matching the item_embeddings column.
// OpenAI text-embedding-3-small produces 1536 dimensions by default.
const Dimensions = 1536

// Provider generates text embeddings. Implementations may be slow, rate-limited,
// and fallible; callers treat a failed Embed as a degraded state, not a fatal one.
type Provider interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) (pgvector.Vector, error)

	// Name returns the provider name for logging.
	Name() string
}
