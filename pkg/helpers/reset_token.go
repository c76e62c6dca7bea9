package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const resetTokenBytes = 32

// NewResetToken returns a random hex token and the digest to persist.
// Only the digest is stored; the raw token goes out by email.
func NewResetToken() (raw string, digest string, err error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	return raw, DigestResetToken(raw), nil
}

// DigestResetToken is the SHA-256 hex digest of a raw reset token.
func DigestResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
