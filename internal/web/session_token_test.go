package web

import (
	"errors"
	"testing"
	"time"

	"github.com/includeshubhamgenius/skill-share/internal/identity"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	signingKey := []byte("test-signing-key-0123456789abcdef")
	session := &identity.Session{UserID: "account-1", Email: "u@real.com", EmailVerified: true}

	tokenString, expiresAt, mintErr := MintSessionToken(session, "skillstream-auth", signingKey, time.Hour)
	if mintErr != nil {
		t.Fatalf("mint: %v", mintErr)
	}
	if remaining := time.Until(expiresAt); remaining < 59*time.Minute || remaining > time.Hour {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	claims, parseErr := ParseSessionToken(tokenString, "skillstream-auth", signingKey)
	if parseErr != nil {
		t.Fatalf("parse: %v", parseErr)
	}
	if claims.UserID != "account-1" || claims.Email != "u@real.com" || !claims.EmailVerified {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Subject != "account-1" {
		t.Fatalf("subject must mirror the account ID, got %q", claims.Subject)
	}
}

func TestParseSessionTokenRejections(t *testing.T) {
	signingKey := []byte("test-signing-key-0123456789abcdef")
	session := &identity.Session{UserID: "account-1", Email: "u@real.com"}

	valid, _, mintErr := MintSessionToken(session, "skillstream-auth", signingKey, time.Hour)
	if mintErr != nil {
		t.Fatalf("mint: %v", mintErr)
	}
	expired, _, expiredErr := MintSessionToken(session, "skillstream-auth", signingKey, -time.Hour)
	if expiredErr != nil {
		t.Fatalf("mint expired: %v", expiredErr)
	}

	tests := []struct {
		name   string
		token  string
		issuer string
		key    []byte
	}{
		{name: "garbage", token: "not-a-token", issuer: "skillstream-auth", key: signingKey},
		{name: "wrong key", token: valid, issuer: "skillstream-auth", key: []byte("another-signing-key-abcdef012345")},
		{name: "wrong issuer", token: valid, issuer: "someone-else", key: signingKey},
		{name: "expired", token: expired, issuer: "skillstream-auth", key: signingKey},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if _, err := ParseSessionToken(test.token, test.issuer, test.key); !errors.Is(err, ErrInvalidSessionToken) {
				t.Fatalf("expected ErrInvalidSessionToken, got %v", err)
			}
		})
	}
}
