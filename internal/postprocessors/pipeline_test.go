package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// mockProcessor is a test processor that returns predefined chunks.
type mockProcessor struct {
	name   string
	chunks []domain.Chunk
	err    error
	calls  int
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.chunks != nil {
		return m.chunks, nil
	}
	return chunks, nil
}

func testDoc() *domain.Document {
	return &domain.Document{
		Source: "test.pdf",
		Pages:  []domain.Page{{Number: 1, Text: "test content"}},
	}
}

func TestPipeline_Names(t *testing.T) {
	assert.Empty(t, NewPipeline().Names())

	p := NewPipeline(&mockProcessor{name: "cleaner"}, &mockProcessor{name: "chunker"})

	assert.Equal(t, []string{"cleaner", "chunker"}, p.Names())
}

func TestPipeline_Process_NilDocument(t *testing.T) {
	_, err := NewPipeline().Process(context.Background(), nil)
	assert.Error(t, err)
}

func TestPipeline_Process_EmptyPipeline(t *testing.T) {
	chunks, err := NewPipeline().Process(context.Background(), testDoc())
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestPipeline_Process_PassthroughAfterCreator(t *testing.T) {
	created := []domain.Chunk{{Content: "test"}}

	p := NewPipeline(
		&mockProcessor{name: "chunker", chunks: created},
		&mockProcessor{name: "passthrough"},
	)

	chunks, err := p.Process(context.Background(), testDoc())
	require.NoError(t, err)
	assert.Equal(t, created, chunks)
}

func TestPipeline_Process_ProcessorError(t *testing.T) {
	expectedErr := errors.New("processor failed")
	after := &mockProcessor{name: "after"}

	p := NewPipeline(&mockProcessor{name: "failing", err: expectedErr}, after)

	_, err := p.Process(context.Background(), testDoc())
	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Contains(t, err.Error(), "processor failing on test.pdf")
	assert.Equal(t, 0, after.calls)
}

func TestPipeline_Process_Cancelled(t *testing.T) {
	proc := &mockProcessor{name: "never"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(proc).Process(ctx, testDoc())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, proc.calls)
}

func TestIngestPipeline_EndToEnd(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	p, err := r.BuildPipeline(IngestProcessors, ChunkingConfig(20, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"cleaner", "chunker"}, p.Names())

	doc := &domain.Document{
		Source: "notes.pdf",
		Pages: []domain.Page{
			{Number: 1, Text: "First para.\r\n\r\nSecond para."},
			{Number: 2, Text: "\x00"},
		},
	}

	chunks, err := p.Process(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "First para.", chunks[0].Content)
	assert.Equal(t, "Second para.", chunks[1].Content)
	assert.Equal(t, 1, chunks[1].Metadata[domain.MetaPage])
}

func TestIngestPipeline_EmptyDocument(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	p, err := r.BuildPipeline(IngestProcessors, ChunkingConfig(20, 0))
	require.NoError(t, err)

	_, err = p.Process(context.Background(), &domain.Document{Pages: []domain.Page{{Number: 1, Text: "  "}}})

	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}
