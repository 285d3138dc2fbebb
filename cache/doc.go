// Package cache provides TTL caching for credential verification results.
//
// It provides a Cache interface with a memory implementation, SHA-256 based
// key derivation for secret material, and TTL policies.
package cache
