package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// DocumentLoader extracts page text from a file on disk.
type DocumentLoader interface {
	// Load returns one Page per physical page, 1-based, including blank pages.
	Load(ctx context.Context, path string) (*domain.Document, error)

	// CheckAvailable reports whether the loader's external tooling is installed.
	CheckAvailable() error
}
