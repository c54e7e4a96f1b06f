package crypto

import (
	"bytes"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	secret := "session-secret"
	plain := []byte(`{"partnerToken":"abc"}`)

	sealed, err := Seal(secret, plain)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, []byte("abc")) {
		t.Fatalf("sealed payload leaks plaintext")
	}

	opened, err := Open(secret, sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(opened, plain) {
		t.Fatalf("round trip mismatch: got %q", opened)
	}
}

func TestOpenRejectsWrongSecret(t *testing.T) {
	sealed, err := Seal("right", []byte("payload"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := Open("wrong", sealed); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestOpenRejectsTamperedPayload(t *testing.T) {
	sealed, err := Seal("secret", []byte("payload"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := Open("secret", sealed); err == nil {
		t.Fatalf("expected error for tampered ciphertext")
	}
}

func TestOpenRejectsShortPayload(t *testing.T) {
	if _, err := Open("secret", []byte("short")); err == nil {
		t.Fatalf("expected error for truncated payload")
	}
}
