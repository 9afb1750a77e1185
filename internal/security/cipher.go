// Package security implements field-level encryption for stored account
// passwords using AES-256-GCM with a PBKDF2-derived key.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// NonceSize is the size of the AES-GCM nonce in bytes (96 bits).
	NonceSize = 12
	// KeySize is the size of the derived AES key in bytes (256 bits).
	KeySize = 32

	saltSize         = 16
	pbkdf2Iterations = 65536
)

// EnvEncryptionKey names the environment variable consulted when no
// secret is passed explicitly.
const EnvEncryptionKey = "ENCRYPTION_KEY"

// ErrDecryptionFailed indicates that a stored value could not be
// decrypted: invalid base64, truncated input, or an authentication tag
// mismatch (tampered data or wrong key).
var ErrDecryptionFailed = errors.New("decryption failed")

// FieldCipher encrypts and decrypts single field values. A cipher built
// from an empty secret is inactive: Encrypt and Decrypt pass values
// through unchanged, which keeps stores written without encryption
// readable. The derived key is immutable after construction, so one
// FieldCipher may be shared freely across goroutines and repositories.
type FieldCipher struct {
	aead   cipher.AEAD
	active bool
}

// NewFieldCipher derives an AES-256 key from the operator secret and
// returns an active cipher. An empty secret yields an inactive cipher;
// callers should surface that condition to the operator via Active.
//
// The salt fed to PBKDF2 is derived deterministically from the secret
// itself (see deriveSalt), so the same secret always produces the same
// key and no extra state needs to be stored beside the data.
func NewFieldCipher(secret string) (*FieldCipher, error) {
	if secret == "" {
		return &FieldCipher{}, nil
	}

	key := pbkdf2.Key([]byte(secret), deriveSalt(secret), pbkdf2Iterations, KeySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create AEAD: %w", err)
	}
	return &FieldCipher{aead: aead, active: true}, nil
}

// NewFieldCipherFromEnv builds a cipher from the ENCRYPTION_KEY
// environment variable. An unset or empty variable yields an inactive
// cipher.
func NewFieldCipherFromEnv() (*FieldCipher, error) {
	return NewFieldCipher(os.Getenv(EnvEncryptionKey))
}

// Active reports whether encryption is enabled.
func (c *FieldCipher) Active() bool {
	return c.active
}

// deriveSalt cycles the secret bytes to a fixed-length salt. The salt is
// deterministic on purpose: the key is recoverable from the secret alone,
// at the cost of salt reuse between installations sharing a secret. This
// is a documented compatibility trade-off; do not change it without a
// migration plan for existing stores.
func deriveSalt(secret string) []byte {
	salt := make([]byte, saltSize)
	secretBytes := []byte(secret)
	for i := range salt {
		salt[i] = secretBytes[i%len(secretBytes)]
	}
	return salt
}

// Encrypt seals plaintext with a fresh random nonce and returns
// base64(nonce || ciphertext || tag). When the cipher is inactive the
// plaintext is returned unchanged.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	if !c.active {
		return plaintext, nil
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any format or authentication failure is
// reported as ErrDecryptionFailed; partially decrypted data is never
// returned. When the cipher is inactive the value is returned unchanged.
func (c *FieldCipher) Decrypt(value string) (string, error) {
	if !c.active {
		return value, nil
	}

	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64", ErrDecryptionFailed)
	}
	if len(data) < NonceSize {
		return "", fmt.Errorf("%w: truncated input", ErrDecryptionFailed)
	}

	nonce, ciphertext := data[:NonceSize], data[NonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication tag mismatch", ErrDecryptionFailed)
	}
	return string(plaintext), nil
}
