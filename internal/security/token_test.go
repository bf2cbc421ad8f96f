package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"wastewise/api/internal/models"
)

var tokenTestUser = models.User{
	ID:    42,
	Email: "jo@x.com",
	Role:  models.RoleResident,
}

func TestIssueAndParseSessionToken(t *testing.T) {
	t.Parallel()

	tok, err := IssueSessionToken("super-secret", tokenTestUser, time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken error: %v", err)
	}

	claims, err := ParseSessionToken(tok, "super-secret")
	if err != nil {
		t.Fatalf("ParseSessionToken error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "jo@x.com" {
		t.Errorf("Email = %q, want jo@x.com", claims.Email)
	}
	if claims.Role != "resident" {
		t.Errorf("Role = %q, want resident", claims.Role)
	}
}

func TestParseSessionToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := IssueSessionToken("super-secret", tokenTestUser, -time.Minute)
	if err != nil {
		t.Fatalf("IssueSessionToken error: %v", err)
	}

	_, err = ParseSessionToken(tok, "super-secret")
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseSessionToken_TamperedSignature(t *testing.T) {
	t.Parallel()

	tok, err := IssueSessionToken("right-secret", tokenTestUser, time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken error: %v", err)
	}

	_, err = ParseSessionToken(tok, "wrong-secret")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	// Flip the last byte of the signature instead of the secret.
	parts := strings.Split(tok, ".")
	sig := []byte(parts[2])
	if sig[len(sig)-1] == 'A' {
		sig[len(sig)-1] = 'B'
	} else {
		sig[len(sig)-1] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = ParseSessionToken(tampered, "right-secret")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for tampered token, got %v", err)
	}
}

func TestParseSessionToken_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := ParseSessionToken("not.a.jwt", "k"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestIssueSessionToken_EmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := IssueSessionToken("", tokenTestUser, time.Hour); err == nil {
		t.Fatalf("expected error for empty signing secret")
	}
}
