package util

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Secret123!")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "Secret123!" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected a bcrypt digest, got %q", hash)
	}
	if !VerifyPassword("Secret123!", hash) {
		t.Fatalf("expected verification to succeed for the original password")
	}
	if VerifyPassword("secret123!", hash) {
		t.Fatalf("expected verification to fail for a different password")
	}
}

func TestHashPasswordProducesUniqueDigests(t *testing.T) {
	first, err := HashPassword("Secret123!")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("Secret123!")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if first == second {
		t.Fatalf("expected salted digests to differ")
	}
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	if VerifyPassword("Secret123!", "not-a-bcrypt-digest") {
		t.Fatalf("expected verification to fail for a malformed digest")
	}
	if VerifyPassword("", "") {
		t.Fatalf("expected verification to fail for empty inputs")
	}
}

func TestValidateNewPassword(t *testing.T) {
	if err := ValidateNewPassword("12345"); err == nil {
		t.Fatalf("expected error for a 5 character password")
	}
	if err := ValidateNewPassword("123456"); err != nil {
		t.Fatalf("expected 6 characters to be accepted, got %v", err)
	}
}
