package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashKey builds a stable short key from its parts, for cache lookups.
func HashKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:16])
}
