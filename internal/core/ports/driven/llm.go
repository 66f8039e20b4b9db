package driven

import "context"

// LLMService turns a rendered answer prompt into text.
//
// Implementations:
//   - Gemini through its OpenAI-compatible endpoint
//   - OpenAI-compatible servers
//   - Ollama (local models)
//
// Failures are wrapped in domain.ErrGeneration, or domain.ErrLLMUnavailable
// when the provider cannot be reached. Implementations never retry.
type LLMService interface {
	// Generate runs one single-turn completion.
	Generate(ctx context.Context, req GenerationRequest) (string, error)

	// ModelName returns the model answering requests.
	ModelName() string

	// Ping checks the provider without running inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerationRequest is one completion call.
type GenerationRequest struct {
	// System is sent ahead of the prompt when set.
	System string

	// Prompt is the rendered answer template.
	Prompt string

	// Temperature is always sent; zero means deterministic.
	Temperature float64

	// MaxTokens caps the answer. Zero leaves the provider default.
	MaxTokens int
}

// Messages returns the request as role/content pairs, system first.
func (r GenerationRequest) Messages() [][2]string {
	msgs := make([][2]string, 0, 2)
	if r.System != "" {
		msgs = append(msgs, [2]string{"system", r.System})
	}
	return append(msgs, [2]string{"user", r.Prompt})
}
