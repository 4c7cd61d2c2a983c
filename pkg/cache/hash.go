package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/matzehuels/modkit/pkg/json"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	var buf bytes.Buffer
	w := json.NewWriter(&buf, false)
	w.Write(parts)
	_ = w.Flush()
	return fmt.Sprintf("%s:%s", prefix, Hash(buf.Bytes()))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
