// Package openai answers prompts through an OpenAI-compatible chat
// completions API. Gemini is reached through its compatible endpoint.
package openai

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
	DefaultBaseURL    = domain.DefaultGeminiOpenAIBaseURL
	DefaultLLMModel   = domain.DefaultGeminiLLMModel
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures the client. APIKey is required.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService posts to <base>/chat/completions with a bearer key.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completionRequest always carries temperature; providers treat a missing
// value as their own default rather than zero.
type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type providerError struct {
	Message string `json:"message"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *providerError `json:"error,omitempty"`
}

// NewLLMService returns a client with defaults applied.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required: %w", domain.ErrLLMUnavailable)
	}
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
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Generate returns the first choice of one completion.
func (s *LLMService) Generate(ctx context.Context, req driven.GenerationRequest) (string, error) {
	body := completionRequest{Model: s.model, Temperature: req.Temperature, MaxTokens: req.MaxTokens}
	for _, m := range req.Messages() {
		body.Messages = append(body.Messages, message{Role: m[0], Content: m[1]})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("openai: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	s.authorize(httpReq)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrLLMUnavailable, s.model, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", domain.ErrGeneration, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: %w: %s (status %d): %s",
			domain.ErrGeneration, domain.ErrRateLimited, s.model, resp.StatusCode, errorMessage(raw))
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: %s (status %d): %s", domain.ErrGeneration, s.model, resp.StatusCode, errorMessage(raw))
	}

	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", domain.ErrGeneration, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("%w: %s: %s", domain.ErrGeneration, s.model, out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: %s returned no choices", domain.ErrGeneration, s.model)
	}
	return out.Choices[0].Message.Content, nil
}

func (s *LLMService) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
}

// errorMessage reads {"error":{...}} and Gemini's [{"error":{...}}] shapes.
func errorMessage(raw []byte) string {
	var single completionResponse
	if json.Unmarshal(raw, &single) == nil && single.Error != nil {
		return single.Error.Message
	}
	var list []struct {
		Error providerError `json:"error"`
	}
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 && list[0].Error.Message != "" {
		return list[0].Error.Message
	}
	return strings.TrimSpace(string(raw))
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: build ping: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: unreachable at %s: %w", s.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("openai: %s/models returned %d: %s", s.baseURL, resp.StatusCode, errorMessage(raw))
	}
	return nil
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
