package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Responder answers questions grounded in an assistant's document.
type Responder interface {
	// Answer returns a grounded response and its source pages.
	// Returns domain.ErrNotFound when the assistant is missing or not owned
	// by the caller, domain.ErrStorageUnavailable when the knowledge base
	// cannot be loaded, and domain.ErrGeneration when the model fails.
	Answer(ctx context.Context, caller domain.Caller, assistantID int64, query string) (*domain.Answer, error)
}
