package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/coder/hnsw"

	"github.com/docuchat/searchcore/internal/filter"
	"github.com/docuchat/searchcore/internal/model"
)

// Relative contribution of the keyword and vector sides to a local hit's
// raw score. The exact scale is irrelevant downstream: scores are min-max
// normalized per index before merging.
const (
	keywordWeight = 0.4
	vectorWeight  = 0.6
)

// overFetchFactor widens raw queries so post-hoc access filtering still
// leaves topN candidates.
const overFetchFactor = 4

// bleveChunk is the document shape stored in the keyword index.
type bleveChunk struct {
	Text string `json:"text"`
}

// LocalBackend is an in-process index backend: Bleve for keyword scoring,
// HNSW for vector similarity, and in-memory chunk records for access
// filtering. One instance serves one scope's index.
type LocalBackend struct {
	mu     sync.RWMutex
	kw     bleve.Index
	graph  *hnsw.Graph[string]
	chunks map[string]*Chunk
	dims   int
	closed bool
}

var _ Backend = (*LocalBackend)(nil)

// NewLocalBackend creates an in-memory backend for vectors of the given
// dimension.
func NewLocalBackend(dims int) (*LocalBackend, error) {
	kw, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create keyword index: %w", err)
	}

	graph := hnsw.NewGraph[string]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20
	graph.Ml = 0.25

	return &LocalBackend{
		kw:     kw,
		graph:  graph,
		chunks: make(map[string]*Chunk),
		dims:   dims,
	}, nil
}

// Add indexes chunks in both sides. Re-adding an ID overwrites it.
func (b *LocalBackend) Add(ctx context.Context, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("backend is closed")
	}

	batch := b.kw.NewBatch()
	for _, c := range chunks {
		if len(c.Vector) != 0 && len(c.Vector) != b.dims {
			return fmt.Errorf("chunk %s: vector dimension %d, want %d", c.ID, len(c.Vector), b.dims)
		}
		if err := batch.Index(c.ID, bleveChunk{Text: c.Text}); err != nil {
			return fmt.Errorf("index chunk %s: %w", c.ID, err)
		}
	}
	if err := b.kw.Batch(batch); err != nil {
		return fmt.Errorf("keyword batch: %w", err)
	}

	for _, c := range chunks {
		if len(c.Vector) > 0 {
			b.graph.Add(hnsw.MakeNode(c.ID, c.Vector))
		}
		b.chunks[c.ID] = c
	}
	return nil
}

// Delete removes chunks by ID. The vector side uses lazy deletion: the
// node stays in the graph but hits without a chunk record are dropped.
func (b *LocalBackend) Delete(ctx context.Context, ids []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("backend is closed")
	}

	batch := b.kw.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
		delete(b.chunks, id)
	}
	if err := b.kw.Batch(batch); err != nil {
		return fmt.Errorf("keyword delete batch: %w", err)
	}
	return nil
}

// Query scores chunks by keyword match and vector similarity, drops those
// the filter rejects, and returns the top topN by combined raw score.
func (b *LocalBackend) Query(ctx context.Context, vector []float32, text string, expr filter.Expression, topN int) ([]model.Result, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("backend is closed")
	}
	if topN <= 0 {
		return []model.Result{}, nil
	}

	fetch := topN * overFetchFactor
	scores := make(map[string]float64)

	if text != "" {
		matchQuery := bleve.NewMatchQuery(text)
		matchQuery.SetField("text")
		req := bleve.NewSearchRequest(matchQuery)
		req.Size = fetch

		res, err := b.kw.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("keyword search: %w", err)
		}
		for _, hit := range res.Hits {
			scores[hit.ID] += keywordWeight * hit.Score
		}
	}

	if len(vector) > 0 && b.graph.Len() > 0 {
		if len(vector) != b.dims {
			return nil, fmt.Errorf("query vector dimension %d, want %d", len(vector), b.dims)
		}
		for _, node := range b.graph.Search(vector, fetch) {
			if _, ok := b.chunks[node.Key]; !ok {
				continue // lazily deleted
			}
			distance := b.graph.Distance(vector, node.Value)
			scores[node.Key] += vectorWeight * float64(1.0-distance/2.0)
		}
	}

	results := make([]model.Result, 0, len(scores))
	for id, score := range scores {
		chunk, ok := b.chunks[id]
		if !ok {
			continue
		}
		if expr != nil && !expr.Matches(chunk.Fields) {
			continue
		}
		results = append(results, buildResult(chunk, score))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// buildResult fills the result template from a chunk, applying field
// fallbacks for metadata absent in the hit.
func buildResult(c *Chunk, score float64) model.Result {
	r := c.Meta
	r.ID = c.ID
	if r.ChunkText == "" {
		r.ChunkText = c.Text
	}
	if r.ChunkID == "" {
		r.ChunkID = c.ID
	}
	if r.PageNumber == 0 {
		r.PageNumber = r.ChunkSequence
	}
	r.Score = score
	return r
}

// Count returns the number of live chunks.
func (b *LocalBackend) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.chunks)
}

// Close releases both indexes.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.graph = nil
	return b.kw.Close()
}
