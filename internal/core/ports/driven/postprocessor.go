package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// PostProcessor transforms a loaded document on its way to chunks.
// PostProcessors are chained in a pipeline (cleaning, then chunking).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and the chunks produced so far.
	// Page-level processors (e.g., cleaner) receive nil chunks, may rewrite
	// doc.Pages, and return nil. The chunker receives nil and returns new chunks.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
