package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintLength is the number of hex characters kept by Fingerprint.
const fingerprintLength = 12

// HashToken creates a SHA-256 hash of a token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// Fingerprint returns a short, stable identifier for a token that is safe
// to log. An empty token has an empty fingerprint.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	return "sha256:" + HashToken(token)[:fingerprintLength]
}
