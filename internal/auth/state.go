package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateState generates a cryptographically secure random state string
// for OAuth CSRF protection. 16 bytes gives 128 bits of entropy.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
