// Package messages defines Bubbletea message types for the terminal views.
package messages

import (
	"github.com/custodia-labs/folio/internal/core/domain"
)

// ProgressReceived carries one ingestion progress event.
type ProgressReceived struct {
	Event domain.ProgressEvent
}

// StreamClosed is sent when the progress channel is closed.
type StreamClosed struct{}

// AnswerReceived carries the outcome of one question.
type AnswerReceived struct {
	Answer *domain.Answer
	Err    error
}
