package blob

import (
	"context"
	"fmt"

	"github.com/custodia-labs/folio/internal/adapters/driven/blob/azure"
	"github.com/custodia-labs/folio/internal/adapters/driven/blob/filesystem"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// NewObjectStore creates the object store selected by settings.
// Azure containers are created on first use.
func NewObjectStore(ctx context.Context, settings domain.StorageSettings) (driven.ObjectStore, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: storage provider %q is not configured", domain.ErrStorageUnavailable, settings.Provider)
	}

	switch settings.Provider {
	case domain.StorageProviderAzure:
		store, err := azure.New(azure.Config{
			ConnectionString: settings.ConnectionString,
			Container:        settings.Container,
		})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureContainer(ctx); err != nil {
			return nil, err
		}
		return store, nil

	case domain.StorageProviderFilesystem:
		return filesystem.New(settings.Dir)

	default:
		return nil, fmt.Errorf("%w: unsupported storage provider %q", domain.ErrStorageUnavailable, settings.Provider)
	}
}
