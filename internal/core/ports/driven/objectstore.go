package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// ObjectStore is a flat blob namespace.
// Names use forward slashes regardless of platform.
type ObjectStore interface {
	// Put writes data under name, overwriting any existing blob.
	Put(ctx context.Context, name string, data []byte) error

	// Get reads the blob stored under name.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, name string) ([]byte, error)

	// List returns the names of all blobs starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the blob stored under name.
	Delete(ctx context.Context, name string) error
}

// DurableStore persists knowledge base artifacts under the "<id>/" prefix.
type DurableStore interface {
	// Upload copies every file under localDir to "<id>/<relative path>", overwriting.
	// Errors are returned wrapped in domain.ErrStorageUnavailable.
	Upload(ctx context.Context, id domain.KnowledgeBaseID, localDir string) error

	// Download writes every blob under "<id>/" to destDir, creating directories.
	// Errors are returned wrapped in domain.ErrStorageUnavailable.
	Download(ctx context.Context, id domain.KnowledgeBaseID, destDir string) error

	// Fetch reads a single artifact, e.g. the manifest.
	Fetch(ctx context.Context, id domain.KnowledgeBaseID, name string) ([]byte, error)

	// DeleteAll removes every blob under "<id>/".
	// Failures are logged and reported only as false.
	DeleteAll(ctx context.Context, id domain.KnowledgeBaseID) bool
}
