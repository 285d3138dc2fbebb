package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength bounds cache keys. Keys produced by the default keyer
// (scope plus a hex SHA-256) stay well under it; the bound guards
// custom keyers.
const MaxKeyLength = 512

var (
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Cache stores serialized verification results under hashed keys.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Get never errors; a miss or an expired entry is (nil, false).
// - Set with a non-positive TTL stores nothing.
// - Delete is idempotent.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ValidateKey rejects keys that are empty, oversized, or carry line
// breaks (which would corrupt line-oriented backends and logs).
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
