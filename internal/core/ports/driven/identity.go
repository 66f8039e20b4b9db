package driven

import "github.com/custodia-labs/folio/internal/core/domain"

// IdentityProvider issues and verifies caller tokens.
type IdentityProvider interface {
	// Issue returns a signed token for caller.
	Issue(caller domain.Caller) (string, error)

	// Verify parses token and returns the caller it was issued to.
	// Returns domain.ErrUnauthorized for invalid or expired tokens.
	Verify(token string) (*domain.Caller, error)
}
