package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "provider-17",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: "ops@example.com",
		Roles: []string{"ROLE_PROVIDER", "admin"},
	})

	id, err := Inspect(token)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if id.Subject != "provider-17" {
		t.Errorf("expected subject provider-17, got %s", id.Subject)
	}
	if id.Email != "ops@example.com" {
		t.Errorf("expected email, got %s", id.Email)
	}
	if !id.HasRole("provider") {
		t.Errorf("expected PROVIDER role, got %v", id.Roles)
	}
	if !id.IsAdmin() {
		t.Error("expected admin identity")
	}
	if !id.ExpiresAt.Equal(exp) {
		t.Errorf("expected expiry %v, got %v", exp, id.ExpiresAt)
	}
	if id.Expired(time.Now()) {
		t.Error("token should not be expired yet")
	}
	if !id.Expired(exp.Add(time.Second)) {
		t.Error("token should be expired after its expiry")
	}
}

func TestInspectSingleRole(t *testing.T) {
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "consumer-3"},
		Role:             "consumer",
	})

	id, err := Inspect(token)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if id.IsAdmin() {
		t.Error("consumer should not be admin")
	}
	if id.Expired(time.Now()) {
		t.Error("token without expiry should never expire")
	}
}

func TestInspectGarbage(t *testing.T) {
	if _, err := Inspect("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestTokenSource(t *testing.T) {
	var nilSource *TokenSource
	if nilSource.Token() != "" {
		t.Error("nil source should yield empty token")
	}

	s := NewTokenSource("one")
	if s.Token() != "one" {
		t.Errorf("expected one, got %s", s.Token())
	}
	s.Set("two")
	if s.Token() != "two" {
		t.Errorf("expected two, got %s", s.Token())
	}
}
