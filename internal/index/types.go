// Package index defines the search index backend interface the merge
// engine fans out to, plus a bundled local backend combining a Bleve
// keyword index with an HNSW vector index.
package index

import (
	"context"

	"github.com/docuchat/searchcore/internal/filter"
	"github.com/docuchat/searchcore/internal/model"
)

// Backend is one scope's search index. Implementations receive the filter
// expression tree and render or evaluate it in their native form.
//
// Returned results carry the index-native relevance score in Score; the
// engine normalizes per backend before merging.
type Backend interface {
	// Query returns up to topN raw hits matching text/vector under expr.
	Query(ctx context.Context, vector []float32, text string, expr filter.Expression, topN int) ([]model.Result, error)

	// Close releases index resources.
	Close() error
}

// Chunk is one indexable unit: text, its embedding, the access-control
// fields filters evaluate against, and the result metadata returned on hits.
type Chunk struct {
	ID     string
	Text   string
	Vector []float32
	Fields filter.Fields

	// Meta is the result template for this chunk; Score, OriginalScore,
	// and OriginalIndex are populated at query time.
	Meta model.Result
}
