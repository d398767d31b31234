package utils

import (
	"crypto/sha1"
	"encoding/hex"
)

// Hash generates a SHA-1 hex digest of the input string
func Hash(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first 24 hex characters of the SHA-1 digest.
// Article ids use this format so they stay stable across worker runs.
func ShortHash(input string) string {
	return Hash(input)[:24]
}
