package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// tokenBytes is the entropy per key; keys are hex encoded to 40 characters.
const tokenBytes = 20

// TokenGenerator mints opaque bearer token keys.
type TokenGenerator struct {
	random io.Reader
}

// NewTokenGenerator creates a generator backed by crypto/rand.
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{random: rand.Reader}
}

// NewKey returns a fresh random key.
func (g *TokenGenerator) NewKey() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := io.ReadFull(g.random, b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
