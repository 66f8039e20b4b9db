package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// VectorIndex stores chunk vectors and answers similarity queries.
// An index is bound to the embedding service that answers query-mode
// embeddings for SimilaritySearch.
type VectorIndex interface {
	// Add appends chunks with their precomputed document-mode vectors.
	// The first call fixes the index dimension.
	Add(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error

	// Search finds the k nearest neighbours to the query vector, closest first.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// SimilaritySearch embeds query in query mode and returns the k closest chunks.
	SimilaritySearch(ctx context.Context, query string, k int) ([]domain.Chunk, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimensions returns the vector size, or zero while empty.
	Dimensions() int

	// Save serialises the index into dir, creating it if needed.
	Save(dir string) error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the docstore id of the matched chunk.
	ID string

	// Chunk is the matched chunk.
	Chunk domain.Chunk

	// Distance is the squared L2 distance to the query (lower is closer).
	Distance float64
}

// VectorIndexStore creates and deserialises vector indexes.
type VectorIndexStore interface {
	// New returns an empty index bound to embedder.
	New(embedder EmbeddingService) VectorIndex

	// Load deserialises an index saved in dir and binds it to embedder.
	// The on-disk format is trusted.
	Load(dir string, embedder EmbeddingService) (VectorIndex, error)
}
