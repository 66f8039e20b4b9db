package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// IsUnauthorized returns true if the error indicates an invalid API key.
func IsUnauthorized(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// retryAfter reads the Retry-After header of a 429 response, in seconds.
func retryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// wrapError maps a Gemini API failure onto domain errors.
// Every failure wraps domain.ErrEmbeddingProvider.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsRateLimited(err) {
		return fmt.Errorf("%w: %w: gemini %s: %w", domain.ErrEmbeddingProvider, domain.ErrRateLimited, op, err)
	}
	return fmt.Errorf("%w: gemini %s: %w", domain.ErrEmbeddingProvider, op, err)
}
