package identity

import (
	"strings"
	"testing"
)

func TestHashPasswordFormat(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "plain", password: "secret123"},
		{name: "empty", password: ""},
		{name: "long", password: strings.Repeat("a", 128)},
		{name: "special chars", password: "p@ssw0rd!#$%"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			encoded, err := HashPassword(test.password)
			if err != nil {
				t.Fatalf("hash: %v", err)
			}
			if !strings.HasPrefix(encoded, "$argon2id$") {
				t.Fatalf("expected argon2id prefix, got %q", encoded)
			}
			if len(strings.Split(encoded, "$")) != 6 {
				t.Fatalf("expected 6 hash segments, got %q", encoded)
			}
		})
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	first, err := HashPassword("samePassword")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashPassword("samePassword")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct hashes for repeated password")
	}
}

func TestVerifyPassword(t *testing.T) {
	encoded, err := HashPassword("correctPassword")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	matches, verifyErr := VerifyPassword("correctPassword", encoded)
	if verifyErr != nil || !matches {
		t.Fatalf("expected match, got matches=%v err=%v", matches, verifyErr)
	}

	matches, verifyErr = VerifyPassword("wrongPassword", encoded)
	if verifyErr != nil {
		t.Fatalf("verify: %v", verifyErr)
	}
	if matches {
		t.Fatalf("expected mismatch for wrong password")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("anything", "not-a-hash"); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
}
