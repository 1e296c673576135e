// Package cryptox centralizes all encryption for the vault: the AES-256-GCM
// cipher engine and the master key provider. No other package performs
// encryption or decryption, which keeps the nonce/key discipline auditable
// in one place.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/mini-page/Secura/internal/common"
)

const (
	// KeySize is the master key length (AES-256).
	KeySize = 32
	// NonceSize is the GCM nonce length.
	NonceSize = 12
	// TagSize is the GCM authentication tag length.
	TagSize = 16
)

// Cipher performs authenticated encryption of byte buffers under the process
// master key. It is stateless and safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a 32-byte master key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", common.ErrMalformedInput, KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes init: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm init: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random 96-bit nonce and returns the
// ciphertext, the nonce and the 128-bit authentication tag separately.
// Callers must not supply their own nonce.
func (c *Cipher) Encrypt(plaintext []byte) (ciphertext, nonce, tag []byte, err error) {
	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("nonce generation: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, plaintext, nil)

	// Seal appends the tag to the ciphertext; the catalog stores them in
	// separate columns.
	split := len(sealed) - TagSize
	return sealed[:split], nonce, sealed[split:], nil
}

// Decrypt opens ciphertext with the stored nonce and tag. It returns
// common.ErrMalformedInput when nonce or tag have the wrong length and
// common.ErrIntegrity when the tag does not verify. No partial plaintext is
// ever released on failure.
func (c *Cipher) Decrypt(ciphertext, nonce, tag []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", common.ErrMalformedInput, NonceSize, len(nonce))
	}
	if len(tag) != TagSize {
		return nil, fmt.Errorf("%w: tag must be %d bytes, got %d", common.ErrMalformedInput, TagSize, len(tag))
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIntegrity, err)
	}
	return plaintext, nil
}
