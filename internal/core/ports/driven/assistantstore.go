package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// AssistantStore persists assistants.
type AssistantStore interface {
	// Create inserts a new assistant and sets its ID and CreatedAt.
	Create(ctx context.Context, a *domain.Assistant) error

	// Get returns the assistant with id.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*domain.Assistant, error)

	// GetOwned returns the assistant with id only if ownerID owns it.
	// Returns domain.ErrNotFound otherwise.
	GetOwned(ctx context.Context, id, ownerID int64) (*domain.Assistant, error)

	// ListByOwner returns the owner's assistants, oldest first.
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Assistant, error)

	// CountByOwner returns how many assistants the owner has.
	CountByOwner(ctx context.Context, ownerID int64) (int, error)

	// IncrementQueryCount records one answered query.
	IncrementQueryCount(ctx context.Context, id int64) error

	// Delete removes the assistant with id.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}
