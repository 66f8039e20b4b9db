package tui

import "errors"

// ErrMissingResponder is returned when the responder is not provided.
var ErrMissingResponder = errors.New("tui: responder is required")

// ErrMissingAssistants is returned when the assistant service is not provided.
var ErrMissingAssistants = errors.New("tui: assistant service is required")
