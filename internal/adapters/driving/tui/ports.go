// Package tui provides the interactive terminal views of folio: a live
// ingestion progress bar and a chat session with one assistant.
package tui

import (
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the chat view.
type Ports struct {
	// Responder answers questions.
	Responder driving.Responder

	// Assistants resolves the assistant being chatted with.
	Assistants driving.AssistantService

	// Caller is the verified identity asking.
	Caller domain.Caller
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Responder == nil {
		return ErrMissingResponder
	}
	if p.Assistants == nil {
		return ErrMissingAssistants
	}
	return nil
}
