// Package blob implements the durable knowledge base store over an object store.
package blob

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure DurableStore implements the interface.
var _ driven.DurableStore = (*DurableStore)(nil)

// DurableStore keeps each knowledge base under the "<id>/" prefix.
type DurableStore struct {
	objects driven.ObjectStore
}

// NewDurableStore creates a durable store over objects.
func NewDurableStore(objects driven.ObjectStore) *DurableStore {
	return &DurableStore{objects: objects}
}

// Upload copies every regular file under localDir to "<id>/<relative path>".
func (s *DurableStore) Upload(ctx context.Context, id domain.KnowledgeBaseID, localDir string) error {
	count := 0
	err := filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		name := id.Prefix() + filepath.ToSlash(rel)
		if err := s.objects.Put(ctx, name, data); err != nil {
			return err
		}
		count++
		logger.Debug("uploaded %s (%d bytes)", name, len(data))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: upload %s: %w", domain.ErrStorageUnavailable, id, err)
	}
	logger.Info("uploaded %d files for knowledge base %s", count, id)
	return nil
}

// Download writes every blob under "<id>/" into destDir.
func (s *DurableStore) Download(ctx context.Context, id domain.KnowledgeBaseID, destDir string) error {
	names, err := s.objects.List(ctx, id.Prefix())
	if err != nil {
		return fmt.Errorf("%w: list %s: %w", domain.ErrStorageUnavailable, id, err)
	}

	for _, name := range names {
		rel, err := relativeName(id, name)
		if err != nil {
			return fmt.Errorf("%w: download %s: %w", domain.ErrStorageUnavailable, id, err)
		}
		data, err := s.objects.Get(ctx, name)
		if err != nil {
			return fmt.Errorf("%w: download %s: %w", domain.ErrStorageUnavailable, name, err)
		}

		target := filepath.Join(destDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("%w: create %s: %w", domain.ErrStorageUnavailable, filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("%w: write %s: %w", domain.ErrStorageUnavailable, target, err)
		}
	}
	logger.Info("downloaded %d files for knowledge base %s", len(names), id)
	return nil
}

// Fetch reads the single artifact "<id>/<name>".
func (s *DurableStore) Fetch(ctx context.Context, id domain.KnowledgeBaseID, name string) ([]byte, error) {
	data, err := s.objects.Get(ctx, id.Prefix()+name)
	if err != nil {
		return nil, fmt.Errorf("fetch %s%s: %w", id.Prefix(), name, err)
	}
	return data, nil
}

// DeleteAll removes every blob under "<id>/". Failures are logged.
func (s *DurableStore) DeleteAll(ctx context.Context, id domain.KnowledgeBaseID) bool {
	names, err := s.objects.List(ctx, id.Prefix())
	if err != nil {
		logger.Error("failed to list blobs for knowledge base %s: %v", id, err)
		return false
	}

	ok := true
	for _, name := range names {
		if err := s.objects.Delete(ctx, name); err != nil {
			logger.Error("failed to delete blob %s: %v", name, err)
			ok = false
		}
	}
	if ok {
		logger.Info("deleted %d blobs for knowledge base %s", len(names), id)
	}
	return ok
}

// relativeName strips the id prefix and rejects names that would leave
// the destination directory.
func relativeName(id domain.KnowledgeBaseID, name string) (string, error) {
	rel, found := strings.CutPrefix(name, id.Prefix())
	if !found || rel == "" {
		return "", fmt.Errorf("blob %q is outside prefix %q", name, id.Prefix())
	}
	if path.IsAbs(rel) || path.Clean(rel) != rel || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("blob %q escapes the destination", name)
	}
	return rel, nil
}
