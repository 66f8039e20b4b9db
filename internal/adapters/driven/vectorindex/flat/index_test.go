package flat

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// fakeEmbedder returns a fixed query vector.
type fakeEmbedder struct {
	query []float32
	err   error
	calls int
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	return f.query, f.err
}

func (f *fakeEmbedder) Dimensions() int              { return len(f.query) }
func (f *fakeEmbedder) ModelName() string            { return "fake" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

func chunk(content string, page int) domain.Chunk {
	return domain.Chunk{
		Content:  content,
		Metadata: map[string]any{domain.MetaPage: page, domain.MetaSource: "doc.pdf"},
	}
}

func seeded(t *testing.T, e *fakeEmbedder) *Index {
	t.Helper()
	idx := New(e)
	require.NoError(t, idx.Add(context.Background(),
		[]domain.Chunk{chunk("origin", 1), chunk("east", 1)},
		[][]float32{{0, 0}, {1, 0}},
	))
	require.NoError(t, idx.Add(context.Background(),
		[]domain.Chunk{chunk("far", 2)},
		[][]float32{{10, 10}},
	))
	return idx
}

func TestAdd_AppendsAndFixesDimension(t *testing.T) {
	idx := seeded(t, nil)

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 2, idx.Dimensions())

	err := idx.Add(context.Background(), []domain.Chunk{chunk("bad", 1)}, [][]float32{{1, 2, 3}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 3, idx.Len())
}

func TestAdd_LengthMismatch(t *testing.T) {
	idx := New(nil)
	err := idx.Add(context.Background(), []domain.Chunk{chunk("a", 1)}, nil)
	assert.Error(t, err)
}

func TestSearch_OrdersByDistance(t *testing.T) {
	idx := seeded(t, nil)

	hits, err := idx.Search(context.Background(), []float32{0.9, 0}, 2)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "east", hits[0].Chunk.Content)
	assert.Equal(t, "origin", hits[1].Chunk.Content)
	assert.InDelta(t, 0.01, hits[0].Distance, 1e-6)
	assert.NotEqual(t, hits[0].ID, hits[1].ID)
}

func TestSearch_Edges(t *testing.T) {
	idx := seeded(t, nil)

	hits, err := idx.Search(context.Background(), []float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 3, "k larger than index returns everything")

	hits, err = idx.Search(context.Background(), []float32{0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, err = idx.Search(context.Background(), []float32{0}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSimilaritySearch_UsesQueryEmbedding(t *testing.T) {
	e := &fakeEmbedder{query: []float32{9, 9}}
	idx := seeded(t, e)

	chunks, err := idx.SimilaritySearch(context.Background(), "where?", 1)

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "far", chunks[0].Content)
	assert.Equal(t, 1, e.calls)
}

func TestSimilaritySearch_Errors(t *testing.T) {
	_, err := New(nil).SimilaritySearch(context.Background(), "q", 1)
	assert.ErrorIs(t, err, ErrNoEmbedder)

	boom := errors.New("boom")
	_, err = seeded(t, &fakeEmbedder{err: boom}).SimilaritySearch(context.Background(), "q", 1)
	assert.ErrorIs(t, err, boom)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), domain.IndexDirName)
	e := &fakeEmbedder{query: []float32{0.9, 0}}
	idx := seeded(t, e)
	before, err := idx.SimilaritySearch(context.Background(), "q", 2)
	require.NoError(t, err)

	require.NoError(t, idx.Save(dir))
	assert.FileExists(t, filepath.Join(dir, VectorsFileName))
	assert.FileExists(t, filepath.Join(dir, DocstoreFileName))

	loaded, err := Load(dir, e)
	require.NoError(t, err)

	assert.Equal(t, 3, loaded.Len())
	assert.Equal(t, 2, loaded.Dimensions())
	after, err := loaded.SimilaritySearch(context.Background(), "q", 2)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Content, after[i].Content)
		page, ok := after[i].Page()
		require.True(t, ok)
		wantPage, _ := before[i].Page()
		assert.Equal(t, wantPage, page)
	}
}

func TestSaveLoad_Empty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, New(nil).Save(dir))

	loaded, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(t.TempDir(), nil)
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, VectorsFileName), []byte("garbage-bytes"), 0o644))
	_, err = Load(dir, nil)
	assert.Error(t, err)
}

func TestLoad_HeaderCountBeyondFileSize(t *testing.T) {
	dir := t.TempDir()
	header := make([]byte, headerSize)
	copy(header, magic[:])
	binary.LittleEndian.PutUint32(header[4:], 768)
	binary.LittleEndian.PutUint32(header[8:], 0xFFFFFFFF)
	data := append(header, 1, 2, 3, 4)
	require.NoError(t, os.WriteFile(filepath.Join(dir, VectorsFileName), data, 0o644))

	var err error
	require.NotPanics(t, func() { _, err = Load(dir, nil) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt vectors file")
}

func TestCheckVectorsSize(t *testing.T) {
	tests := []struct {
		name       string
		size       int64
		dim, count int64
		ok         bool
	}{
		{"empty", headerSize, 0, 0, true},
		{"empty with dimension", headerSize, 3, 0, true},
		{"exact", headerSize + 2*3*4, 3, 2, true},
		{"truncated", headerSize + 3*4, 3, 2, false},
		{"trailing bytes", headerSize + 2*3*4 + 1, 3, 2, false},
		{"zero dimension with vectors", headerSize, 0, 5, false},
		{"max header values", headerSize + 8, 0xFFFFFFFF, 0xFFFFFFFF, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkVectorsSize(tt.size, tt.dim, tt.count)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestStore(t *testing.T) {
	dir := t.TempDir()
	var s Store
	idx := s.New(nil)
	require.NoError(t, idx.Add(context.Background(), []domain.Chunk{chunk("a", 1)}, [][]float32{{1}}))
	require.NoError(t, idx.Save(dir))

	loaded, err := s.Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func TestClose(t *testing.T) {
	idx := seeded(t, nil)
	require.NoError(t, idx.Close())

	_, err := idx.Search(context.Background(), []float32{0, 0}, 1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, idx.Add(context.Background(), nil, nil), ErrClosed)
}
