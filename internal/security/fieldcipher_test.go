package security

import "testing"

func TestFieldCipherRoundTrip(t *testing.T) {
	t.Parallel()

	fc, err := NewFieldCipher("contact-key")
	if err != nil {
		t.Fatalf("NewFieldCipher error: %v", err)
	}

	stored, err := fc.Encode("0771234567")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if stored == "0771234567" {
		t.Fatalf("expected ciphertext, got plaintext")
	}

	plain, state := fc.Decode(stored)
	if state != FieldPlain {
		t.Fatalf("state = %v, want FieldPlain", state)
	}
	if plain != "0771234567" {
		t.Fatalf("plain = %q, want original value", plain)
	}
}

func TestFieldCipher_RandomNonce(t *testing.T) {
	t.Parallel()

	fc, err := NewFieldCipher("contact-key")
	if err != nil {
		t.Fatalf("NewFieldCipher error: %v", err)
	}

	a, _ := fc.Encode("0771234567")
	b, _ := fc.Encode("0771234567")
	if a == b {
		t.Fatalf("two encodings of the same value must differ")
	}
}

func TestFieldCipher_NilPassesThrough(t *testing.T) {
	t.Parallel()

	fc, err := NewFieldCipher("")
	if err != nil {
		t.Fatalf("NewFieldCipher error: %v", err)
	}
	if fc != nil {
		t.Fatalf("empty key must yield a nil cipher")
	}

	stored, err := fc.Encode("0771234567")
	if err != nil || stored != "0771234567" {
		t.Fatalf("nil cipher Encode = (%q, %v), want pass-through", stored, err)
	}

	plain, state := fc.Decode("0771234567")
	if plain != "0771234567" || state != FieldOpaque {
		t.Fatalf("nil cipher Decode = (%q, %v), want raw value and FieldOpaque", plain, state)
	}
}

func TestFieldCipher_CorruptCiphertext(t *testing.T) {
	t.Parallel()

	fc, err := NewFieldCipher("contact-key")
	if err != nil {
		t.Fatalf("NewFieldCipher error: %v", err)
	}

	plain, state := fc.Decode("definitely not ciphertext")
	if state != FieldOpaque {
		t.Fatalf("state = %v, want FieldOpaque", state)
	}
	if plain != "definitely not ciphertext" {
		t.Fatalf("corrupt value must be returned unchanged, got %q", plain)
	}
}

func TestFieldCipher_WrongKey(t *testing.T) {
	t.Parallel()

	enc, err := NewFieldCipher("key-one")
	if err != nil {
		t.Fatalf("NewFieldCipher error: %v", err)
	}
	dec, err := NewFieldCipher("key-two")
	if err != nil {
		t.Fatalf("NewFieldCipher error: %v", err)
	}

	stored, err := enc.Encode("0771234567")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	plain, state := dec.Decode(stored)
	if state != FieldOpaque {
		t.Fatalf("state = %v, want FieldOpaque for wrong key", state)
	}
	if plain != stored {
		t.Fatalf("wrong-key decode must return the stored value unchanged")
	}
}

func TestFieldCipher_EmptyValue(t *testing.T) {
	t.Parallel()

	fc, err := NewFieldCipher("contact-key")
	if err != nil {
		t.Fatalf("NewFieldCipher error: %v", err)
	}

	stored, err := fc.Encode("")
	if err != nil || stored != "" {
		t.Fatalf("empty Encode = (%q, %v), want empty pass-through", stored, err)
	}

	plain, state := fc.Decode("")
	if plain != "" || state != FieldPlain {
		t.Fatalf("empty Decode = (%q, %v), want empty FieldPlain", plain, state)
	}
}
