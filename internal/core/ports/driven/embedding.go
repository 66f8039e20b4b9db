// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Documents and queries are embedded with distinct task modes so that
// providers can optimise each side of retrieval. Implementations return
// transient provider failures (rate limits, server errors, network)
// wrapped in domain.ErrEmbeddingProvider and never retry internally.
//
// Implementations may include:
//   - Gemini (gemini-embedding-001, RETRIEVAL_DOCUMENT / RETRIEVAL_QUERY)
//   - Ollama (nomic-embed-text with search_document / search_query prefixes)
type EmbeddingService interface {
	// EmbedDocuments embeds chunk texts in document mode.
	// The result has one vector per input, in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a user question in query mode.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 3072).
	// Zero means unknown until the first call.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
