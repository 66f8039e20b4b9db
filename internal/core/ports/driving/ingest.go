package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// IngestRequest describes one ingestion run.
type IngestRequest struct {
	// FilePath is the PDF on local disk.
	FilePath string

	// KnowledgeBaseID namespaces the working directory.
	KnowledgeBaseID domain.KnowledgeBaseID

	// ChunkSize and ChunkOverlap configure the chunker, in characters.
	ChunkSize    int
	ChunkOverlap int
}

// Ingestor turns a PDF into a persisted knowledge base.
type Ingestor interface {
	// Ingest starts a run and returns its progress stream.
	// The stream is finite, ends with exactly one ingestion_complete or
	// error event, and is closed afterwards. Cancelling ctx aborts the run
	// at the next batch boundary and produces an error event.
	Ingest(ctx context.Context, req IngestRequest) <-chan domain.ProgressEvent
}
