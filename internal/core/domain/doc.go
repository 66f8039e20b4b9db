// Package domain defines the core business entities for Folio.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document, Page: Extracted PDF text
//   - Chunk: A retrievable unit cut from one page
//   - Assistant: A knowledge base plus its answer settings
//   - ProgressEvent: One message of the ingestion progress stream
//   - Manifest: Build metadata used for cache freshness
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
