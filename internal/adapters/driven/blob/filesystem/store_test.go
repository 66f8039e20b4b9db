package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "3/faiss_index/index.bin", []byte{1, 2, 3}))
	require.NoError(t, s.Put(ctx, "3/chunks.jil", []byte(`[]`)))
	require.NoError(t, s.Put(ctx, "31/chunks.jil", []byte(`[]`)))

	data, err := s.Get(ctx, "3/faiss_index/index.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	names, err := s.List(ctx, "3/")
	require.NoError(t, err)
	assert.Equal(t, []string{"3/chunks.jil", "3/faiss_index/index.bin"}, names)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "1/a", []byte("old")))
	require.NoError(t, s.Put(ctx, "1/a", []byte("new")))

	data, err := s.Get(ctx, "1/a")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(ctx, "9/missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "9/missing"), domain.ErrNotFound)
}

func TestStore_DeletePrunesEmptyDirs(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "5/faiss_index/index.bin", []byte{0}))
	require.NoError(t, s.Delete(ctx, "5/faiss_index/index.bin"))

	_, err = os.Stat(filepath.Join(root, "5"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(root)
	assert.NoError(t, err, "root is kept")
}

func TestStore_RejectsEscapingNames(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../x", "a/../../x", "", "/abs", "a//b"} {
		assert.ErrorIs(t, s.Put(ctx, name, nil), domain.ErrInvalidInput, name)
	}
}

func TestNew_RequiresRoot(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
