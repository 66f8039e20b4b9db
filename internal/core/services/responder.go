package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
	"github.com/custodia-labs/folio/internal/postprocessors/mathmarkup"
)

// Ensure Responder implements the interface.
var _ driving.Responder = (*Responder)(nil)

// contextSeparator joins retrieved chunks in the prompt.
const contextSeparator = "\n\n"

// Responder answers questions from an assistant's knowledge base.
type Responder struct {
	assistants driven.AssistantStore
	cache      driving.KnowledgeBaseCache
	llm        driven.LLMService
	prompts    driven.PromptStore
}

// NewResponder creates a new responder.
func NewResponder(
	assistants driven.AssistantStore,
	cache driving.KnowledgeBaseCache,
	llm driven.LLMService,
	prompts driven.PromptStore,
) *Responder {
	return &Responder{
		assistants: assistants,
		cache:      cache,
		llm:        llm,
		prompts:    prompts,
	}
}

// Answer returns a grounded response and its source pages.
// Only the owner may query an assistant.
func (r *Responder) Answer(ctx context.Context, caller domain.Caller, assistantID int64, query string) (*domain.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewValidationError("query", "is required")
	}

	assistant, err := r.assistants.GetOwned(ctx, assistantID, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("assistant %d: %w", assistantID, err)
	}

	index, err := r.cache.LoadForQuery(ctx, assistant.KnowledgeBaseID())
	if err != nil {
		return nil, err
	}
	defer index.Close()

	chunks, err := index.SimilaritySearch(ctx, query, assistant.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	logger.Debug("retrieved %d chunks for assistant %d", len(chunks), assistant.ID)

	template, err := r.prompts.Load(driven.PromptTutorAnswer)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	prompt := RenderPrompt(template, chunks, query)

	text, err := r.llm.Generate(ctx, driven.GenerationRequest{
		Prompt:      prompt,
		Temperature: assistant.Temperature,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrGeneration) {
			err = fmt.Errorf("%w: %w", domain.ErrGeneration, err)
		}
		return nil, err
	}

	if err := r.assistants.IncrementQueryCount(ctx, assistant.ID); err != nil {
		logger.Warn("failed to record query for assistant %d: %v", assistant.ID, err)
	}

	return &domain.Answer{
		Response: mathmarkup.Normalize(text),
		Sources:  Sources(chunks),
	}, nil
}

// RenderPrompt fills the {context} and {question} placeholders in one pass,
// so placeholder text inside the document is never expanded.
func RenderPrompt(template string, chunks []domain.Chunk, query string) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	return strings.NewReplacer(
		driven.PlaceholderContext, strings.Join(texts, contextSeparator),
		driven.PlaceholderQuestion, query,
	).Replace(template)
}

// Sources returns the distinct page numbers of chunks in ascending order.
// Chunks without a page are reported as page 0.
func Sources(chunks []domain.Chunk) []int {
	seen := make(map[int]struct{}, len(chunks))
	pages := make([]int, 0, len(chunks))
	for _, c := range chunks {
		page, _ := c.Page()
		if _, dup := seen[page]; dup {
			continue
		}
		seen[page] = struct{}{}
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages
}
