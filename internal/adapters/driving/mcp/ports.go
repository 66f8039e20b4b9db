package mcp

import (
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ports aggregates the driving ports and identity used by the MCP server.
type Ports struct {
	// Responder answers questions.
	Responder driving.Responder

	// Assistants lists the caller's assistants. Optional.
	Assistants driving.AssistantService

	// Caller is the verified identity every tool call runs as.
	Caller domain.Caller

	// Version is reported to clients. Defaults to "dev".
	Version string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Responder == nil {
		return ErrMissingResponder
	}
	if p.Caller.ID == 0 || !p.Caller.Role.IsValid() {
		return ErrMissingCaller
	}
	return nil
}
