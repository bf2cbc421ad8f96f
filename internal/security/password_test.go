package security

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	digest, err := HashPassword("Abcdef1!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if strings.Contains(string(digest), "Abcdef1!") {
		t.Fatalf("digest contains the plaintext")
	}

	ok, err := VerifyPassword("Abcdef1!", digest)
	if err != nil {
		t.Fatalf("VerifyPassword error: %v", err)
	}
	if !ok {
		t.Fatalf("expected matching password to verify")
	}
}

func TestVerifyPassword_Mismatch(t *testing.T) {
	t.Parallel()

	digest, err := HashPassword("Abcdef1!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	ok, err := VerifyPassword("wrong-password", digest)
	if err != nil {
		t.Fatalf("mismatch must not error, got: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch to verify false")
	}
}

func TestVerifyPassword_MalformedDigest(t *testing.T) {
	t.Parallel()

	if _, err := VerifyPassword("anything", []byte("not-a-bcrypt-digest")); err == nil {
		t.Fatalf("expected error for malformed digest")
	}
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("Abcdef1!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	b, err := HashPassword("Abcdef1!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if string(a) == string(b) {
		t.Fatalf("two hashes of the same password must differ")
	}
}
