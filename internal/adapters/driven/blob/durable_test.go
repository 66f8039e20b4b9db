package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/adapters/driven/blob/filesystem"
	"github.com/custodia-labs/folio/internal/core/domain"
)

// memObjects is an in-memory object store with injectable failures.
type memObjects struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	putErr    error
	listErr   error
	deleteErr error
}

func newMemObjects() *memObjects {
	return &memObjects{blobs: map[string][]byte{}}
}

func (m *memObjects) Put(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.blobs[name] = data
	return nil
}

func (m *memObjects) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (m *memObjects) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var names []string
	for name := range m.blobs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *memObjects) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.blobs, name)
	return nil
}

func writeArtifacts(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, domain.IndexDirName), 0o755))
	files := map[string]string{
		filepath.Join(domain.IndexDirName, "index.bin"):     "vectors",
		filepath.Join(domain.IndexDirName, "docstore.json"): "[]",
		domain.ChunksFileName:                               `["a"]`,
		domain.MetadataFileName:                             `[{"page":1}]`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestUpload_UsesIDPrefix(t *testing.T) {
	objects := newMemObjects()
	s := NewDurableStore(objects)
	dir := t.TempDir()
	writeArtifacts(t, dir)

	require.NoError(t, s.Upload(context.Background(), "4", dir))

	names, err := objects.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"4/chunks.jil",
		"4/faiss_index/docstore.json",
		"4/faiss_index/index.bin",
		"4/metadata.jil",
	}, names)
}

func TestUpload_Failure(t *testing.T) {
	objects := newMemObjects()
	objects.putErr = errors.New("denied")
	dir := t.TempDir()
	writeArtifacts(t, dir)

	err := NewDurableStore(objects).Upload(context.Background(), "4", dir)

	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.ErrorContains(t, err, "denied")
}

func TestUploadDownload_RoundTrip(t *testing.T) {
	objects, err := filesystem.New(t.TempDir())
	require.NoError(t, err)
	s := NewDurableStore(objects)
	src := t.TempDir()
	writeArtifacts(t, src)

	require.NoError(t, s.Upload(context.Background(), "12", src))
	dest := filepath.Join(t.TempDir(), "12")
	require.NoError(t, s.Download(context.Background(), "12", dest))

	for _, name := range []string{
		filepath.Join(domain.IndexDirName, "index.bin"),
		filepath.Join(domain.IndexDirName, "docstore.json"),
		domain.ChunksFileName,
		domain.MetadataFileName,
	} {
		want, err := os.ReadFile(filepath.Join(src, name))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(dest, name))
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestDownload_Failures(t *testing.T) {
	objects := newMemObjects()
	objects.listErr = errors.New("offline")

	err := NewDurableStore(objects).Download(context.Background(), "1", t.TempDir())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestDownload_RejectsEscapingNames(t *testing.T) {
	objects := newMemObjects()
	objects.blobs["1/../../etc/passwd"] = []byte("x")
	dest := t.TempDir()

	err := NewDurableStore(objects).Download(context.Background(), "1", dest)

	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(filepath.Dir(dest)), "etc", "passwd"))
}

func TestFetch(t *testing.T) {
	objects := newMemObjects()
	objects.blobs["2/manifest.json"] = []byte(`{"chunks":1}`)
	s := NewDurableStore(objects)

	data, err := s.Fetch(context.Background(), "2", domain.ManifestFileName)
	require.NoError(t, err)
	assert.JSONEq(t, `{"chunks":1}`, string(data))

	_, err = s.Fetch(context.Background(), "3", domain.ManifestFileName)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteAll(t *testing.T) {
	objects := newMemObjects()
	objects.blobs["2/a"] = nil
	objects.blobs["2/b/c"] = nil
	objects.blobs["20/a"] = nil
	s := NewDurableStore(objects)

	assert.True(t, s.DeleteAll(context.Background(), "2"))
	assert.Len(t, objects.blobs, 1)
	assert.Contains(t, objects.blobs, "20/a")
}

func TestDeleteAll_SwallowsErrors(t *testing.T) {
	objects := newMemObjects()
	objects.blobs["2/a"] = nil
	objects.deleteErr = errors.New("forbidden")

	assert.False(t, NewDurableStore(objects).DeleteAll(context.Background(), "2"))

	objects.deleteErr = nil
	objects.listErr = errors.New("offline")
	assert.False(t, NewDurableStore(objects).DeleteAll(context.Background(), "2"))
}
