package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// KnowledgeBaseCache materialises knowledge bases from durable storage.
type KnowledgeBaseCache interface {
	// EnsureMaterialized returns the local directory of id, downloading it
	// only when the local index is absent.
	EnsureMaterialized(ctx context.Context, id domain.KnowledgeBaseID) (string, error)

	// LoadForQuery returns the index of id bound to query-mode embeddings.
	LoadForQuery(ctx context.Context, id domain.KnowledgeBaseID) (driven.VectorIndex, error)

	// Refresh re-downloads id when the local manifest differs from the remote one.
	// Returns true if a new copy was downloaded.
	Refresh(ctx context.Context, id domain.KnowledgeBaseID) (bool, error)

	// Evict removes the local materialisation of id.
	Evict(id domain.KnowledgeBaseID) error
}
