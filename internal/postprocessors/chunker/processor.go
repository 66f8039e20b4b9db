// Package chunker provides a recursive character text splitter.
//
// Each page is split on its own so every chunk is a contiguous piece of
// exactly one page and inherits that page's number. Text is split on the
// coarsest separator present (paragraph, line, sentence, word, character),
// and only pieces that are still too long are split further. Adjacent
// pieces are then packed greedily into chunks of at most the configured
// size, with consecutive chunks sharing up to the configured overlap.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Processor splits document pages into overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// WithSeparators replaces the separator priority list.
// The empty separator is appended if missing so splitting always terminates.
func WithSeparators(seps []string) Option {
	return func(p *Processor) {
		if len(seps) == 0 {
			return
		}
		p.separators = append([]string(nil), seps...)
		if p.separators[len(p.separators)-1] != "" {
			p.separators = append(p.separators, "")
		}
	}
}

// New creates a chunker processor.
// Returns a validation error unless 0 <= overlap < size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize:  domain.DefaultChunkSize,
		overlap:    domain.DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := domain.ValidateChunking(p.chunkSize, p.overlap); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured maximum chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document pages into chunks.
// Input chunks are ignored; this processor creates new chunks from the pages.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Split(doc.Source, doc.Pages)
}

// Split chunks each non-blank page. Output order follows page order, then
// position within the page. Returns domain.ErrEmptyDocument if no chunk survives.
func (p *Processor) Split(source string, pages []domain.Page) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, page := range pages {
		if page.IsBlank() {
			continue
		}
		for _, text := range p.SplitText(page.Text) {
			chunks = append(chunks, domain.Chunk{
				Content: text,
				Metadata: map[string]any{
					domain.MetaPage:   page.Number,
					domain.MetaSource: source,
				},
			})
		}
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("document was empty after splitting: %w", domain.ErrEmptyDocument)
	}
	return chunks, nil
}

// SplitText splits a single text. Results are trimmed and never empty.
func (p *Processor) SplitText(text string) []string {
	raw := p.splitText(text, p.separators)
	out := raw[:0]
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
