// Package jwt issues and verifies HMAC-signed caller tokens.
package jwt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.IdentityProvider = (*Provider)(nil)

// Claims carries the caller identity. The subject is the decimal user id.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Provider signs tokens with a shared secret.
type Provider struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	expiry time.Duration
	now    func() time.Time
}

// New creates a provider from auth settings.
func New(cfg domain.AuthSettings) (*Provider, error) {
	if cfg.SecretKey == "" {
		return nil, domain.NewValidationError("auth.secret_key", "is required")
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = domain.DefaultAlgorithm
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, domain.NewValidationError("auth.algorithm", fmt.Sprintf("unsupported algorithm %q", alg))
	}

	expiry := cfg.TokenExpiry
	if expiry <= 0 {
		expiry = domain.DefaultTokenExpiry
	}

	return &Provider{
		secret: []byte(cfg.SecretKey),
		method: method,
		expiry: expiry,
		now:    time.Now,
	}, nil
}

// Issue returns a signed token for caller.
func (p *Provider) Issue(caller domain.Caller) (string, error) {
	if caller.ID <= 0 {
		return "", domain.NewValidationError("caller.id", "must be positive")
	}
	role := caller.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.IsValid() {
		return "", domain.NewValidationError("caller.role", fmt.Sprintf("unknown role %q", role))
	}

	now := p.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(caller.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
		},
		Role: string(role),
	}

	token, err := jwt.NewWithClaims(p.method, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify parses token and returns the caller it was issued to.
func (p *Provider) Verify(token string) (*domain.Caller, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != p.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: invalid subject", domain.ErrUnauthorized)
	}
	role := domain.Role(claims.Role)
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrUnauthorized, claims.Role)
	}

	return &domain.Caller{ID: id, Role: role}, nil
}
