package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	events     []domain.ProgressEvent
	assistants []domain.Assistant
	err        error

	created    driving.CreateAssistantRequest
	createBody string
	caller     domain.Caller
	deletedID  int64
}

func (m *mockAssistantService) Create(
	_ context.Context,
	caller domain.Caller,
	req driving.CreateAssistantRequest,
) (<-chan domain.ProgressEvent, error) {
	m.caller = caller
	m.created = req
	if m.err != nil {
		return nil, m.err
	}
	body, _ := io.ReadAll(req.File)
	m.createBody = string(body)

	ch := make(chan domain.ProgressEvent, len(m.events))
	for _, e := range m.events {
		ch <- e
	}
	close(ch)
	return ch, nil
}

func (m *mockAssistantService) List(_ context.Context, caller domain.Caller) ([]domain.Assistant, error) {
	m.caller = caller
	return m.assistants, m.err
}

func (m *mockAssistantService) Get(_ context.Context, _ domain.Caller, id int64) (*domain.Assistant, error) {
	for i := range m.assistants {
		if m.assistants[i].ID == id {
			return &m.assistants[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockAssistantService) Delete(_ context.Context, caller domain.Caller, id int64) error {
	m.caller = caller
	m.deletedID = id
	return m.err
}

// mockResponder is a mock implementation of driving.Responder.
type mockResponder struct {
	answer *domain.Answer
	err    error

	caller   domain.Caller
	id       int64
	question string
}

func (m *mockResponder) Answer(_ context.Context, caller domain.Caller, id int64, question string) (*domain.Answer, error) {
	m.caller = caller
	m.id = id
	m.question = question
	return m.answer, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings        domain.Settings
	validateErr     error
	connectivityErr error
	saved           *domain.Settings
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.Settings) error {
	m.saved = settings
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) ValidateConnectivity(_ context.Context) error {
	return m.connectivityErr
}

// mockIdentity is a mock implementation of driven.IdentityProvider.
type mockIdentity struct {
	callers map[string]domain.Caller
	issued  []domain.Caller
}

func (m *mockIdentity) Issue(caller domain.Caller) (string, error) {
	m.issued = append(m.issued, caller)
	return "signed-token", nil
}

func (m *mockIdentity) Verify(token string) (*domain.Caller, error) {
	c, ok := m.callers[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return &c, nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	assistants *mockAssistantService
	responder  *mockResponder
	settings   *mockSettingsService
	identity   *mockIdentity
}

// setupTestServices installs fresh mocks and returns them with a cleanup func.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		assistants: &mockAssistantService{},
		responder:  &mockResponder{answer: &domain.Answer{Response: "Forty-two.", Sources: []int{}}},
		settings:   &mockSettingsService{settings: domain.DefaultSettings("/data")},
		identity: &mockIdentity{callers: map[string]domain.Caller{
			"admin-token": {ID: 9, Role: domain.RoleAdmin},
		}},
	}
	SetServices(Services{
		Assistants: ts.assistants,
		Responder:  ts.responder,
		Settings:   ts.settings,
		Identity:   ts.identity,
	})

	origTerminal := isTerminal
	isTerminal = func() bool { return false }

	return ts, func() {
		SetServices(Services{})
		isTerminal = origTerminal
	}
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
