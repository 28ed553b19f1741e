package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes gives 256 bits of entropy per credential id.
const tokenBytes = 32

// NewTokenID returns an opaque, URL-safe credential id. The same generator
// backs both login tokens and sessions: the server stores the id as-is and
// revocation is a row delete.
func NewTokenID() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
