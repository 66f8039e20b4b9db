// Package mcp provides an MCP (Model Context Protocol) server adapter for Folio.
// It lets AI assistants ask questions of the caller's document assistants.
package mcp

import "errors"

// ErrMissingResponder is returned when the responder is not provided.
var ErrMissingResponder = errors.New("mcp: responder is required")

// ErrMissingCaller is returned when the server has no verified identity.
var ErrMissingCaller = errors.New("mcp: caller identity is required")
