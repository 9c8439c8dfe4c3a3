package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestParseSubject(t *testing.T) {
	secret := []byte("s3cret")
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	sub, err := ParseSubject(secret, sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{Subject: "u1", ExpiresAt: exp}))
	if err != nil || sub != "u1" {
		t.Fatalf("ParseSubject = %q, %v; want u1, nil", sub, err)
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.RegisteredClaims{Subject: "u1", ExpiresAt: exp})},
		{"other algorithm", sign(t, jwt.SigningMethodHS512, secret, jwt.RegisteredClaims{Subject: "u1", ExpiresAt: exp})},
		{"expired", sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))})},
		{"no subject", sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{ExpiresAt: exp})},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSubject(secret, tt.raw); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	if tok, ok := BearerToken("bearer abc"); !ok || tok != "abc" {
		t.Fatalf("BearerToken = %q, %v", tok, ok)
	}
	for _, h := range []string{"", "abc", "Basic abc", "Bearer a b"} {
		if _, ok := BearerToken(h); ok {
			t.Fatalf("BearerToken(%q) accepted", h)
		}
	}
}

func TestSubjectFromContext(t *testing.T) {
	if got := SubjectFromContext(context.Background()); got != "" {
		t.Fatalf("subject = %q, want empty", got)
	}
	if got := SubjectFromContext(WithSubject(context.Background(), "u1")); got != "u1" {
		t.Fatalf("subject = %q, want u1", got)
	}
}
