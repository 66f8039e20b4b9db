package postprocessors

import (
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/postprocessors/chunker"
	"github.com/custodia-labs/folio/internal/postprocessors/cleaner"
)

// Config keys understood by the built-in processors.
const (
	ConfigChunkSize      = "chunk_size"
	ConfigChunkOverlap   = "chunk_overlap"
	ConfigJoinHyphenated = "join_hyphenated"
)

// IngestProcessors is the processor order used for ingestion.
var IngestProcessors = []string{"cleaner", "chunker"}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("cleaner", buildCleaner)
	r.Register("chunker", buildChunker)
}

// ChunkingConfig returns processor config for the given chunking parameters.
func ChunkingConfig(size, overlap int) map[string]any {
	return map[string]any{
		ConfigChunkSize:    size,
		ConfigChunkOverlap: overlap,
	}
}

// buildCleaner creates a cleaner from generic config.
// Supported config keys:
//   - join_hyphenated (bool): Rejoin words split across lines (default: true)
func buildCleaner(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []cleaner.Option
	if v, ok := cfg[ConfigJoinHyphenated].(bool); ok {
		opts = append(opts, cleaner.WithJoinHyphenated(v))
	}
	return cleaner.New(opts...), nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 500)
//   - chunk_overlap (int): Overlapping characters between chunks (default: 50)
//
// Invalid combinations are rejected rather than clamped.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	size := domain.DefaultChunkSize
	overlap := domain.DefaultChunkOverlap

	if v, ok := getIntFromConfig(cfg, ConfigChunkSize); ok {
		size = v
	}
	if v, ok := getIntFromConfig(cfg, ConfigChunkOverlap); ok {
		overlap = v
	}

	return chunker.New(chunker.WithChunkSize(size), chunker.WithOverlap(overlap))
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
