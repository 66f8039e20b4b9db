package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure KnowledgeBaseCache implements the interface.
var _ driving.KnowledgeBaseCache = (*KnowledgeBaseCache)(nil)

// KnowledgeBaseCache keeps local copies of knowledge bases downloaded
// from durable storage. A local copy is trusted once its index exists.
type KnowledgeBaseCache struct {
	root            string
	durable         driven.DurableStore
	indexes         driven.VectorIndexStore
	embedder        driven.EmbeddingService
	verifyFreshness bool

	downloads singleflight.Group
}

// CacheOption configures a KnowledgeBaseCache.
type CacheOption func(*KnowledgeBaseCache)

// WithFreshnessCheck compares manifests with durable storage on every load.
func WithFreshnessCheck(enabled bool) CacheOption {
	return func(c *KnowledgeBaseCache) {
		c.verifyFreshness = enabled
	}
}

// NewKnowledgeBaseCache creates a cache rooted at root.
func NewKnowledgeBaseCache(
	root string,
	durable driven.DurableStore,
	indexes driven.VectorIndexStore,
	embedder driven.EmbeddingService,
	opts ...CacheOption,
) *KnowledgeBaseCache {
	c := &KnowledgeBaseCache{
		root:     root,
		durable:  durable,
		indexes:  indexes,
		embedder: embedder,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the local directory of id.
func (c *KnowledgeBaseCache) Dir(id domain.KnowledgeBaseID) string {
	return filepath.Join(c.root, id.String())
}

// EnsureMaterialized returns the local directory of id, downloading it
// only when the local index is absent. Concurrent misses share one download.
func (c *KnowledgeBaseCache) EnsureMaterialized(ctx context.Context, id domain.KnowledgeBaseID) (string, error) {
	if _, err := domain.ParseKnowledgeBaseID(id.String()); err != nil {
		return "", err
	}

	if c.verifyFreshness {
		if _, err := c.Refresh(ctx, id); err != nil {
			return "", err
		}
	}

	dir := c.Dir(id)
	if c.materialized(dir) {
		return dir, nil
	}

	if err := c.sharedDownload(ctx, id, dir); err != nil {
		return "", err
	}
	return dir, nil
}

// LoadForQuery returns the index of id bound to query-mode embeddings.
func (c *KnowledgeBaseCache) LoadForQuery(ctx context.Context, id domain.KnowledgeBaseID) (driven.VectorIndex, error) {
	dir, err := c.EnsureMaterialized(ctx, id)
	if err != nil {
		return nil, err
	}

	index, err := c.indexes.Load(filepath.Join(dir, domain.IndexDirName), c.embedder)
	if err != nil {
		return nil, fmt.Errorf("%w: load index %s: %w", domain.ErrStorageUnavailable, id, err)
	}
	return index, nil
}

// Refresh re-downloads id when the local manifest differs from the remote one.
// A missing local copy counts as stale.
func (c *KnowledgeBaseCache) Refresh(ctx context.Context, id domain.KnowledgeBaseID) (bool, error) {
	if _, err := domain.ParseKnowledgeBaseID(id.String()); err != nil {
		return false, err
	}

	data, err := c.durable.Fetch(ctx, id, domain.ManifestFileName)
	if err != nil {
		return false, wrapStorage(fmt.Errorf("fetch manifest %s: %w", id, err))
	}
	remote, err := decodeManifest(data)
	if err != nil {
		return false, wrapStorage(err)
	}

	dir := c.Dir(id)
	local, err := ReadManifest(dir)
	if err == nil && local.ContentHash == remote.ContentHash && c.materialized(dir) {
		return false, nil
	}

	logger.Info("knowledge base %s is stale, downloading", id)
	if err := c.Evict(id); err != nil {
		return false, err
	}
	if err := c.sharedDownload(ctx, id, dir); err != nil {
		return false, err
	}
	return true, nil
}

// sharedDownload joins or starts the download of id. The download runs
// detached from ctx so one caller giving up does not fail the others;
// each caller still stops waiting when its own ctx is done.
func (c *KnowledgeBaseCache) sharedDownload(ctx context.Context, id domain.KnowledgeBaseID, dir string) error {
	detached := context.WithoutCancel(ctx)
	ch := c.downloads.DoChan(id.String(), func() (any, error) {
		return nil, c.download(detached, id, dir)
	})
	select {
	case res := <-ch:
		if res.Shared {
			logger.Debug("joined in-flight download of knowledge base %s", id)
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Evict removes the local materialisation of id.
func (c *KnowledgeBaseCache) Evict(id domain.KnowledgeBaseID) error {
	if _, err := domain.ParseKnowledgeBaseID(id.String()); err != nil {
		return err
	}
	if err := os.RemoveAll(c.Dir(id)); err != nil {
		return fmt.Errorf("evict %s: %w", id, err)
	}
	return nil
}

func (c *KnowledgeBaseCache) materialized(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, domain.IndexDirName))
	return err == nil && info.IsDir()
}

// download fetches id into dir. Partial downloads are not rolled back.
func (c *KnowledgeBaseCache) download(ctx context.Context, id domain.KnowledgeBaseID, dir string) error {
	if c.materialized(dir) {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return wrapStorage(fmt.Errorf("create cache dir: %w", err))
	}

	logger.Debug("downloading knowledge base %s to %s", id, dir)
	if err := c.durable.Download(ctx, id, dir); err != nil {
		return wrapStorage(err)
	}

	if _, err := os.Stat(filepath.Join(dir, domain.IndexDirName)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: knowledge base %s has no index", domain.ErrStorageUnavailable, id)
		}
		return wrapStorage(err)
	}
	return nil
}

func wrapStorage(err error) error {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}
