package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashKey creates a SHA256 hash of the joined parts.
// This is useful for creating consistent, safe keys for Redis.
func HashKey(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))
}
