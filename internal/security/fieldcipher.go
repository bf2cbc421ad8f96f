package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// FieldState tells the caller whether a stored field value was actually
// decrypted or returned as-is because decryption was impossible.
type FieldState int

const (
	// FieldPlain: the returned value is the decrypted plaintext.
	FieldPlain FieldState = iota
	// FieldOpaque: no cipher key is configured, or the stored value is
	// not valid ciphertext for the configured key. The raw stored value
	// is returned unchanged so nothing is lost, but callers can detect
	// the condition instead of silently treating ciphertext as data.
	FieldOpaque
)

// FieldCipher encrypts individual profile fields (the contact number) at
// rest with AES-GCM and a random per-value nonce. A nil *FieldCipher is
// valid and passes values through untouched.
type FieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher derives a 256-bit AES key from the configured key
// string. An empty key yields a nil cipher, i.e. no encryption.
func NewFieldCipher(key string) (*FieldCipher, error) {
	if key == "" {
		return nil, nil
	}

	sum := sha256.Sum256([]byte(key))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, fmt.Errorf("field cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("field cipher gcm: %w", err)
	}
	return &FieldCipher{aead: aead}, nil
}

// Encode encrypts plain for storage. The nonce is prepended to the
// ciphertext and the whole value is base64url-encoded.
func (c *FieldCipher) Encode(plain string) (string, error) {
	if c == nil || plain == "" {
		return plain, nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("field cipher nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode decrypts a stored value. Any failure returns the stored value
// unchanged together with FieldOpaque.
func (c *FieldCipher) Decode(stored string) (string, FieldState) {
	if stored == "" {
		return stored, FieldPlain
	}
	if c == nil {
		return stored, FieldOpaque
	}

	raw, err := base64.RawURLEncoding.DecodeString(stored)
	if err != nil || len(raw) < c.aead.NonceSize() {
		return stored, FieldOpaque
	}

	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return stored, FieldOpaque
	}
	return string(plain), FieldPlain
}
