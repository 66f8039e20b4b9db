// Package gemini provides an embedding service adapter for the Google
// Generative Language API.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel = domain.DefaultGeminiEmbeddingModel

	// MaxBatchSize is the API limit on requests per batchEmbedContents call.
	MaxBatchSize = 100
)

// Task types sent with each request.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey authenticates requests. Ignored when HTTPClient is set.
	APIKey string

	// Model is the embedding model resource name (default: models/gemini-embedding-001).
	Model string

	// Dimensions truncates output vectors when positive. Zero keeps the model default.
	Dimensions int

	// Endpoint overrides the API base URL, mainly for tests.
	Endpoint string

	// HTTPClient replaces the default authenticated client.
	HTTPClient *http.Client

	// RateLimit paces requests. Zero uses DefaultRateLimit.
	RateLimit RateLimitConfig
}

// EmbeddingService generates embeddings using Gemini.
type EmbeddingService struct {
	svc     *generativelanguage.Service
	model   string
	limiter *RateLimiter

	mu         sync.RWMutex
	dimensions int
	configured int
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	var opts []option.ClientOption
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	} else {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini: %w", domain.ErrEmbeddingUnavailable)
		}
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create service: %w", err)
	}

	return &EmbeddingService{
		svc:        svc,
		model:      cfg.Model,
		limiter:    NewRateLimiter(cfg.RateLimit),
		dimensions: cfg.Dimensions,
		configured: cfg.Dimensions,
	}, nil
}

// EmbedDocuments embeds chunk texts with the RETRIEVAL_DOCUMENT task type.
func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(texts))
		batch, err := s.batchEmbed(ctx, texts[start:end], TaskRetrievalDocument)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// EmbedQuery embeds a question with the RETRIEVAL_QUERY task type.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.batchEmbed(ctx, []string{text}, TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *EmbeddingService) batchEmbed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := &generativelanguage.BatchEmbedContentsRequest{
		Requests: make([]*generativelanguage.EmbedContentRequest, len(texts)),
	}
	for i, text := range texts {
		req.Requests[i] = &generativelanguage.EmbedContentRequest{
			Model:                s.model,
			Content:              &generativelanguage.Content{Parts: []*generativelanguage.Part{{Text: text}}},
			TaskType:             taskType,
			OutputDimensionality: int64(s.configured),
		}
	}

	resp, err := s.svc.Models.BatchEmbedContents(s.model, req).Context(ctx).Do()
	if err != nil {
		if IsRateLimited(err) {
			s.limiter.RecordRateLimitError(retryAfter(err))
			logger.Warn("gemini: rate limited, backing off until %s", s.limiter.BackoffUntil().Format("15:04:05"))
		}
		return nil, wrapError("batchEmbedContents", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: gemini returned %d embeddings for %d inputs",
			domain.ErrEmbeddingProvider, len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			return nil, fmt.Errorf("%w: gemini returned an empty embedding at %d", domain.ErrEmbeddingProvider, i)
		}
		vec := make([]float32, len(emb.Values))
		for j, v := range emb.Values {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	s.observeDimensions(len(vectors[0]))
	return vectors, nil
}

func (s *EmbeddingService) observeDimensions(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimensions == 0 {
		s.dimensions = n
	}
}

// Dimensions returns the embedding vector size, or zero before the first call
// when no output dimensionality was configured.
func (s *EmbeddingService) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the API key and model by fetching the model metadata.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.svc.Models.Get(s.model).Context(ctx).Do(); err != nil {
		if IsUnauthorized(err) {
			return fmt.Errorf("gemini: invalid API key: %w", err)
		}
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
