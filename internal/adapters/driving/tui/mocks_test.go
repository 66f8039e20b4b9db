package tui

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// mockResponder is a mock implementation of driving.Responder.
type mockResponder struct {
	answer  *domain.Answer
	err     error
	queries []string
}

func (m *mockResponder) Answer(_ context.Context, _ domain.Caller, _ int64, query string) (*domain.Answer, error) {
	m.queries = append(m.queries, query)
	return m.answer, m.err
}

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	assistant *domain.Assistant
	err       error
}

func (m *mockAssistantService) Create(
	_ context.Context,
	_ domain.Caller,
	_ driving.CreateAssistantRequest,
) (<-chan domain.ProgressEvent, error) {
	return nil, m.err
}

func (m *mockAssistantService) List(_ context.Context, _ domain.Caller) ([]domain.Assistant, error) {
	return nil, m.err
}

func (m *mockAssistantService) Get(_ context.Context, _ domain.Caller, _ int64) (*domain.Assistant, error) {
	return m.assistant, m.err
}

func (m *mockAssistantService) Delete(_ context.Context, _ domain.Caller, _ int64) error {
	return m.err
}
