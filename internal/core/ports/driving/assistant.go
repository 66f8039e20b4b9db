package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// CreateAssistantRequest carries a new assistant and its PDF.
type CreateAssistantRequest struct {
	// Spec holds the user-supplied settings.
	Spec domain.AssistantSpec

	// File is the PDF content. It is copied before Create returns.
	File io.Reader
}

// AssistantService manages the assistant lifecycle.
type AssistantService interface {
	// Create validates the request, persists the assistant and starts
	// ingestion. The returned stream forwards progress, then reports
	// uploading and ends with exactly one complete or error event.
	// Admission failures (validation, quota, busy) are returned directly.
	Create(ctx context.Context, caller domain.Caller, req CreateAssistantRequest) (<-chan domain.ProgressEvent, error)

	// List returns the caller's assistants.
	List(ctx context.Context, caller domain.Caller) ([]domain.Assistant, error)

	// Get returns one of the caller's assistants.
	Get(ctx context.Context, caller domain.Caller, id int64) (*domain.Assistant, error)

	// Delete removes an assistant and its artifacts. Owners and admins only.
	Delete(ctx context.Context, caller domain.Caller, id int64) error
}
