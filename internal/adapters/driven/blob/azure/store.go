// Package azure provides an object store backed by an Azure Blob Storage container.
package azure

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// Config holds the container connection settings.
type Config struct {
	// ConnectionString is the storage account connection string (required).
	ConnectionString string

	// Container is the container name (default: assistants).
	Container string
}

// blobAPI is the subset of the azblob client used by Store.
type blobAPI interface {
	UploadBuffer(ctx context.Context, container, name string, data []byte) error
	DownloadStream(ctx context.Context, container, name string) (io.ReadCloser, error)
	ListNames(ctx context.Context, container, prefix string) ([]string, error)
	DeleteBlob(ctx context.Context, container, name string) error
	CreateContainer(ctx context.Context, container string) error
}

// Store reads and writes blobs in a single container.
type Store struct {
	api       blobAPI
	container string
}

// New connects to the storage account in cfg.
func New(cfg Config) (*Store, error) {
	if cfg.ConnectionString == "" {
		return nil, fmt.Errorf("azure: connection string is required: %w", domain.ErrStorageUnavailable)
	}
	if cfg.Container == "" {
		cfg.Container = domain.DefaultContainerName
	}

	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("azure: create client: %w", err)
	}
	return &Store{api: &sdkClient{client: client}, container: cfg.Container}, nil
}

// EnsureContainer creates the container if it does not exist.
func (s *Store) EnsureContainer(ctx context.Context) error {
	err := s.api.CreateContainer(ctx, s.container)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return mapError("create container "+s.container, err)
	}
	return nil
}

// Put writes data under name, overwriting.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if err := s.api.UploadBuffer(ctx, s.container, name, data); err != nil {
		return mapError("upload "+name, err)
	}
	return nil
}

// Get reads the blob stored under name.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	body, err := s.api.DownloadStream(ctx, s.container, name)
	if err != nil {
		return nil, mapError("download "+name, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("azure: read %s: %w", name, err)
	}
	return data, nil
}

// List returns the names of all blobs starting with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	names, err := s.api.ListNames(ctx, s.container, prefix)
	if err != nil {
		return nil, mapError("list "+prefix, err)
	}
	return names, nil
}

// Delete removes the blob stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.api.DeleteBlob(ctx, s.container, name); err != nil {
		return mapError("delete "+name, err)
	}
	return nil
}

// mapError converts missing-blob responses into domain.ErrNotFound and
// other service responses into domain.ErrStorageUnavailable. A service
// response is reduced to its error code and status, since the SDK's own
// message spans the whole raw response.
func mapError(op string, err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return fmt.Errorf("azure: %s: %w", op, domain.ErrNotFound)
	}
	var resp *azcore.ResponseError
	if errors.As(err, &resp) {
		return fmt.Errorf("azure: %s: %s (status %d): %w", op, resp.ErrorCode, resp.StatusCode, domain.ErrStorageUnavailable)
	}
	return fmt.Errorf("azure: %s: %w", op, err)
}

// sdkClient adapts *azblob.Client to blobAPI.
type sdkClient struct {
	client *azblob.Client
}

func (c *sdkClient) UploadBuffer(ctx context.Context, container, name string, data []byte) error {
	_, err := c.client.UploadBuffer(ctx, container, name, data, nil)
	return err
}

func (c *sdkClient) DownloadStream(ctx context.Context, container, name string) (io.ReadCloser, error) {
	resp, err := c.client.DownloadStream(ctx, container, name, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *sdkClient) ListNames(ctx context.Context, container, prefix string) ([]string, error) {
	pager := c.client.NewListBlobsFlatPager(container, &azblob.ListBlobsFlatOptions{Prefix: &prefix})

	var names []string
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	return names, nil
}

func (c *sdkClient) DeleteBlob(ctx context.Context, container, name string) error {
	_, err := c.client.DeleteBlob(ctx, container, name, nil)
	return err
}

func (c *sdkClient) CreateContainer(ctx context.Context, container string) error {
	_, err := c.client.CreateContainer(ctx, container, nil)
	return err
}
