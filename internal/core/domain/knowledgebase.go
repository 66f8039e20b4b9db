package domain

import (
	"strconv"
	"time"
)

// Knowledge base layout. The same relative paths are used in the local
// working directory, the local cache and under the durable blob prefix.
const (
	// IndexDirName holds the serialised vector index.
	IndexDirName = "faiss_index"

	// ChunksFileName holds the ordered chunk texts.
	ChunksFileName = "chunks.jil"

	// MetadataFileName holds the ordered chunk metadata.
	MetadataFileName = "metadata.jil"

	// ManifestFileName holds the build manifest used for freshness checks.
	ManifestFileName = "manifest.json"
)

// EmbeddingBatchSize is the number of chunks embedded per provider call.
const EmbeddingBatchSize = 100

// KnowledgeBaseID identifies a knowledge base. It is the decimal form of the
// owning assistant's id and namespaces both local and durable storage.
type KnowledgeBaseID string

// ParseKnowledgeBaseID validates s as a positive decimal integer.
func ParseKnowledgeBaseID(s string) (KnowledgeBaseID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 || strconv.FormatInt(n, 10) != s {
		return "", NewValidationError("knowledge_base_id", "must be a positive integer, got "+strconv.Quote(s))
	}
	return KnowledgeBaseID(s), nil
}

// KnowledgeBaseIDFor returns the knowledge base id of an assistant.
func KnowledgeBaseIDFor(assistantID int64) KnowledgeBaseID {
	return KnowledgeBaseID(strconv.FormatInt(assistantID, 10))
}

// String returns the string representation.
func (id KnowledgeBaseID) String() string {
	return string(id)
}

// Prefix returns the durable storage prefix, e.g. "7/".
func (id KnowledgeBaseID) Prefix() string {
	return string(id) + "/"
}

// EmbeddingMode selects how text is embedded.
// Documents and queries use distinct task modes on providers that support them.
type EmbeddingMode string

// Available embedding modes.
const (
	// EmbeddingModeDocument embeds chunks for storage.
	EmbeddingModeDocument EmbeddingMode = "document"

	// EmbeddingModeQuery embeds a user question for retrieval.
	EmbeddingModeQuery EmbeddingMode = "query"
)

// Manifest describes a built knowledge base.
type Manifest struct {
	KnowledgeBaseID KnowledgeBaseID `json:"knowledge_base_id"`
	Chunks          int             `json:"chunks"`
	Dimensions      int             `json:"dimensions"`
	EmbeddingModel  string          `json:"embedding_model"`
	ContentHash     string          `json:"content_hash"`
	BuiltAt         time.Time       `json:"built_at"`
}
