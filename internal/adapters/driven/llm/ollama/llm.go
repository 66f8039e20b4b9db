// Package ollama answers prompts with a local Ollama model.
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

var _ driven.LLMService = (*LLMService)(nil)

// Defaults.
const (
	DefaultBaseURL    = domain.DefaultOllamaBaseURL
	DefaultLLMModel   = domain.DefaultOllamaLLMModel
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures the Ollama client.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls Ollama's /api/chat without streaming.
type LLMService struct {
	client  *http.Client
	baseURL string
	model   string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest always carries options so a zero temperature is explicit.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  options   `json:"options"`
}

type options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Message message `json:"message"`
	Error   string  `json:"error,omitempty"`
}

// NewLLMService returns an Ollama client with defaults applied.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

// Generate sends the request as a chat exchange and returns the reply.
func (s *LLMService) Generate(ctx context.Context, req driven.GenerationRequest) (string, error) {
	body := chatRequest{
		Model:   s.model,
		Options: options{Temperature: req.Temperature, NumPredict: req.MaxTokens},
	}
	for _, m := range req.Messages() {
		body.Messages = append(body.Messages, message{Role: m[0], Content: m[1]})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("ollama: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ollama: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: ollama %s: %w", domain.ErrLLMUnavailable, s.model, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: ollama: read response: %w", domain.ErrGeneration, err)
	}
	var out chatResponse
	decodeErr := json.Unmarshal(raw, &out)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: %w: ollama %s busy", domain.ErrGeneration, domain.ErrRateLimited, s.model)
	case resp.StatusCode != http.StatusOK:
		reason := strings.TrimSpace(string(raw))
		if decodeErr == nil && out.Error != "" {
			reason = out.Error
		}
		return "", fmt.Errorf("%w: ollama %s returned %d: %s", domain.ErrGeneration, s.model, resp.StatusCode, reason)
	case decodeErr != nil:
		return "", fmt.Errorf("%w: ollama: decode response: %w", domain.ErrGeneration, decodeErr)
	case out.Error != "":
		return "", fmt.Errorf("%w: ollama %s: %s", domain.ErrGeneration, s.model, out.Error)
	}
	return out.Message.Content, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists local models, which needs no inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: build ping: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: unreachable at %s: %w", s.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: %s/api/tags returned %d", s.baseURL, resp.StatusCode)
	}
	return nil
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
