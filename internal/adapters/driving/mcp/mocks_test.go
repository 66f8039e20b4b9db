package mcp

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

var testCaller = domain.Caller{ID: 42, Role: domain.RoleUser}

// mockResponder is a mock implementation of driving.Responder.
type mockResponder struct {
	answer *domain.Answer
	err    error

	gotCaller domain.Caller
	gotID     int64
	gotQuery  string
}

func (m *mockResponder) Answer(_ context.Context, caller domain.Caller, id int64, query string) (*domain.Answer, error) {
	m.gotCaller = caller
	m.gotID = id
	m.gotQuery = query
	return m.answer, m.err
}

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	assistants []domain.Assistant
	assistant  *domain.Assistant
	err        error
}

func (m *mockAssistantService) Create(
	_ context.Context,
	_ domain.Caller,
	_ driving.CreateAssistantRequest,
) (<-chan domain.ProgressEvent, error) {
	return nil, m.err
}

func (m *mockAssistantService) List(_ context.Context, _ domain.Caller) ([]domain.Assistant, error) {
	return m.assistants, m.err
}

func (m *mockAssistantService) Get(_ context.Context, _ domain.Caller, _ int64) (*domain.Assistant, error) {
	return m.assistant, m.err
}

func (m *mockAssistantService) Delete(_ context.Context, _ domain.Caller, _ int64) error {
	return m.err
}
