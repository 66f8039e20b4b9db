// Package ollama embeds chunks and questions with a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL    = domain.DefaultOllamaBaseURL
	DefaultModel      = domain.DefaultOllamaEmbeddingModel
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = 768
)

// Task prefixes understood by nomic-embed-text. Ollama has no task-type
// parameter, so the mode travels in the text.
const (
	DocumentPrefix = "search_document: "
	QueryPrefix    = "search_query: "
)

// Config selects the server and model. Zero fields take the defaults.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int

	// DisablePrefixes sends texts unchanged, for models without task prefixes.
	DisablePrefixes bool
}

// EmbeddingService calls POST /api/embed.
type EmbeddingService struct {
	http       *http.Client
	baseURL    string
	model      string
	dimensions int
	prefixes   bool
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// NewEmbeddingService applies defaults to cfg.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	s := &EmbeddingService{
		http:       &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		prefixes:   !cfg.DisablePrefixes,
	}
	if s.http.Timeout <= 0 {
		s.http.Timeout = DefaultTimeout
	}
	if s.baseURL == "" {
		s.baseURL = DefaultBaseURL
	}
	if s.model == "" {
		s.model = DefaultModel
	}
	if s.dimensions <= 0 {
		s.dimensions = DefaultDimensions
	}
	return s
}

// EmbedDocuments embeds chunk texts in document mode.
func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return s.embed(ctx, s.withPrefix(DocumentPrefix, texts))
}

// EmbedQuery embeds a question in query mode.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	out, err := s.embed(ctx, s.withPrefix(QueryPrefix, []string{text}))
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (s *EmbeddingService) withPrefix(prefix string, texts []string) []string {
	if !s.prefixes {
		return texts
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = prefix + t
	}
	return out
}

func (s *EmbeddingService) embed(ctx context.Context, input []string) ([][]float32, error) {
	payload, err := json.Marshal(embedRequest{Model: s.model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("encode embed request: %w", err)
	}

	resp, err := s.do(ctx, http.MethodPost, "/api/embed", payload)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %w", domain.ErrEmbeddingProvider, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %w: ollama status %d", domain.ErrEmbeddingProvider, domain.ErrRateLimited, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: ollama status %d: %s", domain.ErrEmbeddingProvider, resp.StatusCode, readReason(resp.Body))
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode embed response: %w", domain.ErrEmbeddingProvider, err)
	}
	if got := len(decoded.Embeddings); got != len(input) {
		return nil, fmt.Errorf("%w: ollama returned %d embeddings for %d inputs",
			domain.ErrEmbeddingProvider, got, len(input))
	}
	return toFloat32(decoded.Embeddings), nil
}

func (s *EmbeddingService) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.http.Do(req)
}

func toFloat32(in [][]float64) [][]float32 {
	out := make([][]float32, len(in))
	for i, row := range in {
		vec := make([]float32, len(row))
		for j, v := range row {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out
}

// readReason returns a trimmed, bounded copy of an error body.
func readReason(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4<<10))
	return strings.TrimSpace(string(data))
}

// Dimensions returns the configured vector length.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// ModelName returns the embedding model.
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping lists local models, which needs no inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	resp, err := s.do(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return fmt.Errorf("ollama unreachable at %s: %w", s.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama status %d: %s", resp.StatusCode, readReason(resp.Body))
	}
	return nil
}

// Close is a no-op.
func (s *EmbeddingService) Close() error { return nil }
