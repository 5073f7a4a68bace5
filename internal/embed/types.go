// Package embed provides the query embedding providers the search engine
// depends on: a deterministic hash-based embedder, an Ollama-compatible
// HTTP embedder, and an LRU-cached wrapper for either.
package embed

import (
	"context"
	"time"
)

// DefaultTimeout is the default timeout for remote embedding requests.
const DefaultTimeout = 10 * time.Second

// Embedder turns query text into a vector.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier (part of embedding cache keys).
	ModelName() string

	// Close releases resources.
	Close() error
}
