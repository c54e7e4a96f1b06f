package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// deriveKey normalizes key material to 32 bytes using SHA-256.
func deriveKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	key := make([]byte, len(sum))
	copy(key, sum[:])
	return key
}

// Seal encrypts plaintext using ChaCha20-Poly1305 with a nonce prefix.
func Seal(secret string, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(deriveKey(secret))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts data produced by Seal.
func Open(secret string, payload []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(deriveKey(secret))
	if err != nil {
		return nil, err
	}
	nonceSize := aead.NonceSize()
	if len(payload) < nonceSize {
		return nil, io.ErrUnexpectedEOF
	}
	nonce := payload[:nonceSize]
	ciphertext := payload[nonceSize:]
	return aead.Open(nil, nonce, ciphertext, nil)
}
