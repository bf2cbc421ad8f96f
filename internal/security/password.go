package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// HashPassword produces an irreversible salted digest safe to persist.
// The plaintext is never stored or logged anywhere in this codebase.
func HashPassword(password string) ([]byte, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt hash: %w", err)
	}
	return digest, nil
}

// VerifyPassword reports whether password matches digest. A mismatch is
// (false, nil); only infrastructure failures (malformed digest) error.
func VerifyPassword(password string, digest []byte) (bool, error) {
	err := bcrypt.CompareHashAndPassword(digest, []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("bcrypt compare: %w", err)
	}
	return true, nil
}
