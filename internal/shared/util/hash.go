package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey returns a stable, path-safe key for a user ID so raw
// identifiers never appear in storage paths.
func HashUserKey(userID string) string {
	sum := sha256.Sum256([]byte("velox:" + userID))
	return hex.EncodeToString(sum[:16])
}
