// Package service provides the business logic for account generation,
// keeping all I/O in the repository layer.
package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// passwordChars is the fixed alphabet passwords are drawn from.
const passwordChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%&*"

// MaxPasswordLength is the upper bound accepted by Generate.
const MaxPasswordLength = 128

// ErrInvalidLength indicates a requested password length outside 1..128.
var ErrInvalidLength = errors.New("invalid password length")

// PasswordGenerator produces random passwords from a fixed alphabet
// using a cryptographically strong random source.
type PasswordGenerator struct{}

// NewPasswordGenerator returns a ready-to-use generator.
func NewPasswordGenerator() *PasswordGenerator {
	return &PasswordGenerator{}
}

// Generate returns a password of exactly length characters, each drawn
// independently and uniformly from the alphabet. length must be in
// 1..MaxPasswordLength.
func (g *PasswordGenerator) Generate(length int) (string, error) {
	if length <= 0 || length > MaxPasswordLength {
		return "", fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	alphabetSize := big.NewInt(int64(len(passwordChars)))
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("read random source: %w", err)
		}
		password[i] = passwordChars[n.Int64()]
	}
	return string(password), nil
}
