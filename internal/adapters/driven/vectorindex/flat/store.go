package flat

import "github.com/custodia-labs/folio/internal/core/ports/driven"

// Ensure Store implements the interface.
var _ driven.VectorIndexStore = Store{}

// Store creates and loads flat indexes.
type Store struct{}

// New returns an empty index bound to embedder.
func (Store) New(embedder driven.EmbeddingService) driven.VectorIndex {
	return New(embedder)
}

// Load deserialises the index saved in dir.
func (Store) Load(dir string, embedder driven.EmbeddingService) (driven.VectorIndex, error) {
	return Load(dir, embedder)
}
