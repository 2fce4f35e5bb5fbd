// Package token signs and verifies the compact session tokens issued at
// registration, login, and password change.
package token

import (
	"errors"
	"fmt"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// ErrInvalidToken covers every verification failure: bad signature, expired,
// malformed. Callers must not distinguish between them.
var ErrInvalidToken = errors.New("invalid token")

// SessionClaims carry the identity embedded in a session token.
type SessionClaims struct {
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
}

// Generator signs and validates HS256 session tokens with a fixed TTL.
type Generator struct {
	secret []byte
	ttl    time.Duration
}

func NewGenerator(secret []byte, ttl time.Duration) *Generator {
	return &Generator{secret: secret, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (g *Generator) TTL() time.Duration {
	return g.ttl
}

// Sign issues a token for the given subject with expiry now+TTL.
func (g *Generator) Sign(subject string, custom SessionClaims) (string, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: g.secret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("create signer: %w", err)
	}

	now := time.Now()
	std := jwt.Claims{
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(g.ttl)),
	}

	raw, err := jwt.Signed(signer).Claims(std).Claims(custom).Serialize()
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return raw, nil
}

// Validate checks signature and expiry and returns the embedded claims.
// Any failure collapses to ErrInvalidToken.
func (g *Generator) Validate(raw string) (*jwt.Claims, *SessionClaims, error) {
	parsed, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	var (
		std    jwt.Claims
		custom SessionClaims
	)
	if err := parsed.Claims(g.secret, &std, &custom); err != nil {
		return nil, nil, ErrInvalidToken
	}
	if err := std.Validate(jwt.Expected{Time: time.Now()}); err != nil {
		return nil, nil, ErrInvalidToken
	}
	return &std, &custom, nil
}
