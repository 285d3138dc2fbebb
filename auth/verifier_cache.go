package auth

import (
	"context"
	"encoding/json"

	"github.com/jonwraymond/toolgate/cache"
)

// CachingVerifier wraps a TokenVerifier and caches positive lookups for
// a bounded TTL. Negative results are never cached: a revoked token
// must stop working as soon as the cached positive entry lapses, and an
// unknown token should be re-checked every time.
//
// Cache keys are derived by hashing the token, so raw credentials never
// appear as cache keys.
type CachingVerifier struct {
	verifier TokenVerifier
	store    cache.Cache
	keyer    cache.Keyer
	policy   cache.Policy
}

// NewCachingVerifier creates a caching decorator around verifier.
func NewCachingVerifier(verifier TokenVerifier, store cache.Cache, policy cache.Policy) *CachingVerifier {
	return &CachingVerifier{
		verifier: verifier,
		store:    store,
		keyer:    cache.NewDefaultKeyer(),
		policy:   policy,
	}
}

// VerifyToken consults the cache before the wrapped verifier.
func (v *CachingVerifier) VerifyToken(ctx context.Context, token string, req *AuthRequest) (map[string]any, error) {
	if !v.policy.ShouldCache() {
		return v.verifier.VerifyToken(ctx, token, req)
	}

	key := v.keyer.Key("static_token", token)

	if data, ok := v.store.Get(ctx, key); ok {
		var user map[string]any
		if err := json.Unmarshal(data, &user); err == nil {
			return user, nil
		}
		// Corrupt entry: drop it and fall through to the verifier.
		_ = v.store.Delete(ctx, key)
	}

	user, err := v.verifier.VerifyToken(ctx, token, req)
	if err != nil || user == nil {
		return user, err
	}

	if data, err := json.Marshal(user); err == nil {
		_ = v.store.Set(ctx, key, data, v.policy.EffectiveTTL(0))
	}

	return user, nil
}

// Invalidate drops the cached entry for a token, forcing the next
// verification through the wrapped verifier.
func (v *CachingVerifier) Invalidate(ctx context.Context, token string) {
	_ = v.store.Delete(ctx, v.keyer.Key("static_token", token))
}

// Ensure CachingVerifier implements TokenVerifier
var _ TokenVerifier = (*CachingVerifier)(nil)
