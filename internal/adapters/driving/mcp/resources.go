package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/folio/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Folio resources.
	uriScheme = "folio://"
)

// registerResources registers resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Assistants == nil {
		return
	}

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "assistants/{assistantId}",
		Name:        "assistant",
		Description: "Settings and usage of one assistant",
		MIMEType:    "application/json",
	}, s.handleAssistantResource)
}

// handleAssistantResource returns one of the caller's assistants.
func (s *Server) handleAssistantResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, ok := extractAssistantID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	assistant, err := s.ports.Assistants.Get(ctx, s.ports.Caller, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting assistant: %w", err)
	}

	data, err := json.MarshalIndent(toAssistantOutput(assistant), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling assistant: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractAssistantID parses the id from a URI like folio://assistants/{assistantId}.
func extractAssistantID(uri string) (int64, bool) {
	const prefix = uriScheme + "assistants/"

	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(uri, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
