// Package auth holds the bearer token used against the analytics backend and
// decodes what the token says about its holder.
package auth

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims issued by the marketplace identity service.
// The signature is verified by the backend, never here.
type Claims struct {
	jwt.RegisteredClaims
	Email string   `json:"email,omitempty"`
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Identity is the caller as described by the token.
type Identity struct {
	Subject   string    `json:"subject"`
	Email     string    `json:"email,omitempty"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Inspect decodes the claims of a JWT without verifying its signature.
func Inspect(token string) (Identity, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("decoding token: %w", err)
	}

	id := Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
	}
	if claims.Role != "" {
		id.Roles = append(id.Roles, strings.ToUpper(claims.Role))
	}
	for _, r := range claims.Roles {
		id.Roles = append(id.Roles, strings.ToUpper(strings.TrimPrefix(r, "ROLE_")))
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// HasRole reports whether the identity carries role (case-insensitive).
func (i Identity) HasRole(role string) bool {
	role = strings.ToUpper(role)
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether privileged endpoints should be offered.
func (i Identity) IsAdmin() bool {
	return i.HasRole("ADMIN")
}

// Expired reports whether the token expired before now. Tokens without an
// expiry never expire.
func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// TokenSource holds the current bearer token. It is swapped on config reload.
type TokenSource struct {
	mu    sync.RWMutex
	token string
}

// NewTokenSource returns a source holding token.
func NewTokenSource(token string) *TokenSource {
	return &TokenSource{token: token}
}

// Token returns the current token, or "" when none is configured.
func (s *TokenSource) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces the token.
func (s *TokenSource) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}
