// Package flat provides an exact, in-memory vector index persisted as a
// little-endian float32 matrix plus a JSON docstore.
package flat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Errors returned by the index.
var (
	ErrClosed            = errors.New("flat: index is closed")
	ErrDimensionMismatch = errors.New("flat: embedding dimension mismatch")
	ErrNoEmbedder        = errors.New("flat: index has no embedding service")
)

// entry is one stored chunk.
type entry struct {
	id    string
	chunk domain.Chunk
}

// Index provides exact L2 nearest-neighbour search.
type Index struct {
	mu        sync.RWMutex
	embedder  driven.EmbeddingService
	entries   []entry
	vectors   [][]float32
	dimension int
	closed    bool
}

// New creates an empty index bound to embedder.
// embedder may be nil when only Search is used.
func New(embedder driven.EmbeddingService) *Index {
	return &Index{embedder: embedder}
}

// Add appends chunks with their precomputed vectors.
// The first non-empty call fixes the dimension.
func (idx *Index) Add(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("flat: %d chunks for %d vectors", len(chunks), len(vectors))
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return ErrClosed
	}

	dim := idx.dimension
	for _, v := range vectors {
		if dim == 0 {
			dim = len(v)
		}
		if len(v) == 0 || len(v) != dim {
			return ErrDimensionMismatch
		}
	}
	idx.dimension = dim

	for i, c := range chunks {
		vec := make([]float32, dim)
		copy(vec, vectors[i])
		idx.entries = append(idx.entries, entry{id: uuid.NewString(), chunk: c})
		idx.vectors = append(idx.vectors, vec)
	}
	return nil
}

// Search finds the k nearest neighbours to the query vector, closest first.
// Ties keep insertion order.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return nil, ErrClosed
	}
	if k <= 0 || len(idx.vectors) == 0 {
		return nil, nil
	}
	if len(query) != idx.dimension {
		return nil, ErrDimensionMismatch
	}

	hits := make([]driven.VectorHit, len(idx.vectors))
	for i, v := range idx.vectors {
		hits[i] = driven.VectorHit{
			ID:       idx.entries[i].id,
			Chunk:    idx.entries[i].chunk,
			Distance: squaredL2(query, v),
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// SimilaritySearch embeds query in query mode and returns the k closest chunks.
func (idx *Index) SimilaritySearch(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	if idx.embedder == nil {
		return nil, ErrNoEmbedder
	}
	vec, err := idx.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := idx.Search(ctx, vec, k)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, len(hits))
	for i, h := range hits {
		chunks[i] = h.Chunk
	}
	return chunks, nil
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Dimensions returns the vector size, or zero while empty.
func (idx *Index) Dimensions() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dimension
}

// Close releases resources.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.closed = true
	idx.entries = nil
	idx.vectors = nil
	return nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
