package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Keyer derives cache keys from credential material. The raw credential must
// never appear in the key.
//
// Contract:
// - Determinism: same inputs must produce the same key.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key derives a cache key from a scope and a secret value.
	Key(scope, secret string) string
}

// DefaultKeyer derives SHA-256 based cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key derives a deterministic cache key.
// Format: cache:<scope>:<hash> where hash is the full SHA-256 of the secret.
// Hashing the full digest keeps the secret out of cache storage and avoids
// collisions between credentials sharing a prefix.
func (k *DefaultKeyer) Key(scope, secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return "cache:" + scope + ":" + hex.EncodeToString(hash[:])
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
