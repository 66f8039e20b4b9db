package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	AssistantID int64  `json:"assistant_id" jsonschema:"id of the assistant to ask"`
	Question    string `json:"question" jsonschema:"the question to answer from the assistant's document"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Response string `json:"response"`
	Sources  []int  `json:"sources"`
}

// ListAssistantsInput is the empty input schema for the list_assistants tool.
type ListAssistantsInput struct{}

// ListAssistantsOutput is the output schema for the list_assistants tool.
type ListAssistantsOutput struct {
	Assistants []AssistantOutput `json:"assistants"`
	Count      int               `json:"count"`
}

// AssistantOutput summarises one assistant.
type AssistantOutput struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FileName    string    `json:"file_name"`
	Temperature float64   `json:"temperature"`
	TopK        int       `json:"top_k"`
	QueryCount  int64     `json:"query_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAssistantOutput(a *domain.Assistant) AssistantOutput {
	return AssistantOutput{
		ID:          a.ID,
		Name:        a.Name,
		FileName:    a.FileName,
		Temperature: a.Temperature,
		TopK:        a.TopK,
		QueryCount:  a.QueryCount,
		CreatedAt:   a.CreatedAt,
	}
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from an assistant's document, citing page numbers",
	}, s.handleAsk)

	if s.ports.Assistants != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_assistants",
			Description: "List the assistants available to you",
		}, s.handleListAssistants)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Responder.Answer(ctx, s.ports.Caller, input.AssistantID, input.Question)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, AskOutput{}, fmt.Errorf("assistant %d not found", input.AssistantID)
		}
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{Response: answer.Response, Sources: answer.Sources}, nil
}

// handleListAssistants handles the list_assistants tool invocation.
func (s *Server) handleListAssistants(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListAssistantsInput,
) (*mcp.CallToolResult, ListAssistantsOutput, error) {
	assistants, err := s.ports.Assistants.List(ctx, s.ports.Caller)
	if err != nil {
		return nil, ListAssistantsOutput{}, err
	}

	output := ListAssistantsOutput{
		Assistants: make([]AssistantOutput, len(assistants)),
		Count:      len(assistants),
	}
	for i := range assistants {
		output.Assistants[i] = toAssistantOutput(&assistants[i])
	}
	return nil, output, nil
}
