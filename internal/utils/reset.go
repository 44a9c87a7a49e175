package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewResetToken returns a high-entropy random token for the password
// reset flow.  32 bytes of secure randomness, hex encoded (64 chars).
// The plaintext is handed to the mail collaborator; only its hash is
// ever persisted.
func NewResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashResetRaw returns the SHA-256 hash of a raw reset token as a hex
// string.  Storing only the hash means a leaked ledger cannot be used
// to redeem outstanding reset tokens.
func HashResetRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
