package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/toolgate/resilience"
)

// KeySetConfig configures the published-key-set (JWKS) provider.
type KeySetConfig struct {
	// URL is the key-set endpoint.
	URL string

	// FetchTimeout bounds a single key-set fetch.
	// Default: 10 seconds
	FetchTimeout time.Duration

	// CacheTTL enables key caching when positive. Zero (the default)
	// re-fetches the key set on every validation, matching the
	// documented behavior of the endpoint this shim fronts. Caching is
	// an explicit opt-in that changes latency and availability
	// characteristics.
	CacheTTL time.Duration

	// HTTPClient is the client used for fetches. If nil, a default
	// client is used (the per-fetch timeout still applies).
	HTTPClient *http.Client
}

// KeySetProvider retrieves RSA verification keys from a JWKS endpoint.
// It implements KeyProvider. With CacheTTL set it caches parsed keys,
// coalesces concurrent refreshes, and degrades gracefully to the last
// good fetch; without it every GetKey performs one bounded fetch and a
// failed fetch is terminal for that validation.
type KeySetProvider struct {
	config KeySetConfig

	mu          sync.RWMutex
	keys        map[string]*rsa.PublicKey
	cacheTime   time.Time
	lastFetched map[string]*rsa.PublicKey // backup for graceful degradation
	sfGroup     singleflight.Group
}

// NewKeySetProvider creates a key-set provider.
func NewKeySetProvider(config KeySetConfig) *KeySetProvider {
	// Apply defaults
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = 10 * time.Second
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}

	return &KeySetProvider{
		config:      config,
		keys:        make(map[string]*rsa.PublicKey),
		lastFetched: make(map[string]*rsa.PublicKey),
	}
}

// GetKey returns the key for the given key ID. If keyID is empty and
// the set holds exactly one key, that key is returned.
func (p *KeySetProvider) GetKey(ctx context.Context, keyID string) (any, error) {
	if p.config.CacheTTL <= 0 {
		// Fetch-per-validation mode: no cache, no coalescing, no fallback.
		if err := p.refresh(ctx); err != nil {
			return nil, err
		}
		return p.lookupKey(keyID)
	}

	p.mu.RLock()
	cacheValid := time.Since(p.cacheTime) < p.config.CacheTTL
	if cacheValid {
		key := p.lookupKeyLocked(keyID)
		p.mu.RUnlock()
		if key != nil {
			return key, nil
		}
		// Key not in cache, need to refresh
	} else {
		p.mu.RUnlock()
	}

	// Coalesce concurrent refreshes
	_, err, _ := p.sfGroup.Do("refresh", func() (any, error) {
		return nil, p.refresh(ctx)
	})
	if err != nil {
		// On refresh failure, fall back to previously fetched keys
		p.mu.RLock()
		key := p.lookupKeyLocked(keyID)
		if key == nil {
			key = p.lookupFromBackupLocked(keyID)
		}
		p.mu.RUnlock()

		if key != nil {
			return key, nil
		}
		return nil, err
	}

	return p.lookupKey(keyID)
}

func (p *KeySetProvider) lookupKey(keyID string) (any, error) {
	p.mu.RLock()
	key := p.lookupKeyLocked(keyID)
	p.mu.RUnlock()

	if key == nil {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

// lookupKeyLocked finds a key by ID. Caller must hold at least RLock.
func (p *KeySetProvider) lookupKeyLocked(keyID string) *rsa.PublicKey {
	if keyID == "" {
		for _, key := range p.keys {
			return key
		}
		return nil
	}
	return p.keys[keyID]
}

// lookupFromBackupLocked finds a key in the backup cache. Caller must hold at least RLock.
func (p *KeySetProvider) lookupFromBackupLocked(keyID string) *rsa.PublicKey {
	if keyID == "" {
		for _, key := range p.lastFetched {
			return key
		}
		return nil
	}
	return p.lastFetched[keyID]
}

// refresh fetches the key set. Any transport, status, decode or
// key-format failure wraps ErrKeySetFetch.
func (p *KeySetProvider) refresh(ctx context.Context) error {
	var keySet jwksResponse

	// Single attempt only; a failed fetch surfaces immediately rather
	// than stretching the validation with retries.
	err := resilience.ExecuteWithTimeout(ctx, p.config.FetchTimeout, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.URL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		resp, err := p.config.HTTPClient.Do(req)
		if err != nil {
			return fmt.Errorf("fetch key set: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(&keySet); err != nil {
			return fmt.Errorf("decode key set: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeySetFetch, err)
	}

	// Parse all RSA keys; skip entries we cannot use
	keys := make(map[string]*rsa.PublicKey)
	for _, jwk := range keySet.Keys {
		if jwk.Kty != "RSA" {
			continue
		}

		pubKey, err := parseRSAPublicKey(jwk)
		if err != nil {
			continue
		}

		keys[jwk.Kid] = pubKey
	}

	p.mu.Lock()
	p.keys = keys
	p.cacheTime = time.Now()
	for kid, key := range keys {
		p.lastFetched[kid] = key
	}
	p.mu.Unlock()

	return nil
}

// Ping performs a single bounded fetch of the key-set endpoint without
// touching the cache state used for validation. Health checks use it.
func (p *KeySetProvider) Ping(ctx context.Context) error {
	return resilience.ExecuteWithTimeout(ctx, p.config.FetchTimeout, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.URL, nil)
		if err != nil {
			return err
		}
		resp, err := p.config.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}
		return nil
	})
}

// jwksResponse is the key-set endpoint response format.
type jwksResponse struct {
	Keys []jwkKey `json:"keys"`
}

// jwkKey represents a single JWK.
type jwkKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// parseRSAPublicKey converts a JWK to an RSA public key.
func parseRSAPublicKey(jwk jwkKey) (*rsa.PublicKey, error) {
	if jwk.N == "" {
		return nil, fmt.Errorf("missing n parameter")
	}
	if jwk.E == "" {
		return nil, fmt.Errorf("missing e parameter")
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("decode n: %w", err)
	}
	n := new(big.Int).SetBytes(nBytes)

	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("decode e: %w", err)
	}
	e := new(big.Int).SetBytes(eBytes)

	return &rsa.PublicKey{
		N: n,
		E: int(e.Int64()),
	}, nil
}

// Ensure KeySetProvider implements KeyProvider
var _ KeyProvider = (*KeySetProvider)(nil)
