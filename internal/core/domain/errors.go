package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist
	// or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Every validation failure wraps this error.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyDocument indicates no usable text survived extraction or splitting.
	// It is a validation failure and matches ErrInvalidInput.
	ErrEmptyDocument = fmt.Errorf("%w: empty document", ErrInvalidInput)

	// ErrUnsupportedType indicates an upload that is not a PDF.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrUnauthorized indicates the caller may not perform the operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrQuotaExceeded indicates the caller already owns the maximum number of assistants.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrIngestionInProgress indicates an ingestion for the same knowledge base is running.
	ErrIngestionInProgress = errors.New("ingestion in progress")

	// Provider Errors.

	// ErrEmbeddingProvider indicates the embedding provider failed transiently
	// (rate limit, server error, network). Callers decide whether to retry.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrGeneration indicates the language model call failed.
	ErrGeneration = errors.New("generation failed")

	// ErrStorageUnavailable indicates durable storage could not be reached
	// or a knowledge base could not be loaded from it.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// ValidationError describes which field failed validation.
// It matches ErrInvalidInput via errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError returns a ValidationError for the given field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
