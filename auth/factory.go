package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonwraymond/toolgate/secret"
)

// AuthenticatorFactory creates an authenticator from configuration.
type AuthenticatorFactory func(ctx context.Context, cfg map[string]any) (Authenticator, error)

// Registry manages authenticator factories. String configuration values
// are resolved through a secret resolver before use, so issuer URLs,
// header names and prefixes can reference environment variables or
// secretref values.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]AuthenticatorFactory
	resolver  *secret.Resolver
}

// NewRegistry creates an auth registry using the given secret resolver.
// A nil resolver falls back to strict environment expansion only.
func NewRegistry(resolver *secret.Resolver) *Registry {
	return &Registry{
		factories: make(map[string]AuthenticatorFactory),
		resolver:  resolver,
	}
}

// Register adds an authenticator factory.
func (r *Registry) Register(name string, factory AuthenticatorFactory) error {
	if name == "" || factory == nil {
		return errors.New("invalid authenticator registration")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("authenticator %q already registered", name)
	}

	r.factories[name] = factory
	return nil
}

// Create instantiates an authenticator by name.
func (r *Registry) Create(ctx context.Context, name string, cfg map[string]any) (Authenticator, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("authenticator %q not found", name)
	}

	return factory(ctx, cfg)
}

// List returns registered factory names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveString resolves a string config value via the secret resolver.
func (r *Registry) resolveString(ctx context.Context, cfg map[string]any, key string) (string, error) {
	raw, ok := cfg[key].(string)
	if !ok || raw == "" {
		return "", nil
	}
	resolved, err := r.resolver.ResolveValue(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", key, err)
	}
	return resolved, nil
}

// DefaultRegistry is the global auth registry with built-in factories.
var DefaultRegistry = NewRegistry(secret.NewResolver(false))

func init() {
	// Signed bearer tokens verified against a published key set.
	_ = DefaultRegistry.Register("signed_token", func(ctx context.Context, cfg map[string]any) (Authenticator, error) {
		config := SignedTokenConfig{}

		issuer, err := DefaultRegistry.resolveString(ctx, cfg, "issuer")
		if err != nil {
			return nil, err
		}
		if issuer == "" {
			return nil, errors.New("signed_token: issuer is required")
		}
		config.Issuer = issuer

		if algs, ok := cfg["algorithms"].([]any); ok {
			for _, a := range algs {
				if s, ok := a.(string); ok {
					config.Algorithms = append(config.Algorithms, s)
				}
			}
		}

		audience, err := DefaultRegistry.resolveString(ctx, cfg, "audience")
		if err != nil {
			return nil, err
		}
		if audience != "" {
			config.VerifyAudience = true
			config.Audience = audience
		}

		keySetURL, err := DefaultRegistry.resolveString(ctx, cfg, "jwks_url")
		if err != nil {
			return nil, err
		}
		if keySetURL == "" {
			return nil, errors.New("signed_token: jwks_url is required")
		}

		keySetConfig := KeySetConfig{URL: keySetURL}
		if ttl, ok := cfg["cache_ttl"].(string); ok {
			if d, err := time.ParseDuration(ttl); err == nil {
				keySetConfig.CacheTTL = d
			}
		}
		if timeout, ok := cfg["fetch_timeout"].(string); ok {
			if d, err := time.ParseDuration(timeout); err == nil {
				keySetConfig.FetchTimeout = d
			}
		}

		return NewSignedTokenAuthenticator(config, NewKeySetProvider(keySetConfig)), nil
	})

	// Prefixed static tokens backed by an in-memory verifier.
	_ = DefaultRegistry.Register("static_token", func(ctx context.Context, cfg map[string]any) (Authenticator, error) {
		config := StaticTokenConfig{}

		headerName, err := DefaultRegistry.resolveString(ctx, cfg, "header_name")
		if err != nil {
			return nil, err
		}
		config.HeaderName = headerName

		prefix, err := DefaultRegistry.resolveString(ctx, cfg, "prefix")
		if err != nil {
			return nil, err
		}
		config.Prefix = prefix

		verifier := NewMemoryTokenVerifier()

		// Pre-populate tokens if provided
		if tokens, ok := cfg["tokens"].([]any); ok {
			for _, t := range tokens {
				tokenMap, ok := t.(map[string]any)
				if !ok {
					continue
				}

				token, err := DefaultRegistry.resolveString(ctx, tokenMap, "token")
				if err != nil {
					return nil, err
				}
				if token == "" {
					continue
				}

				rec := &TokenRecord{}
				if v, ok := tokenMap["user_id"].(string); ok {
					rec.UserID = v
				}
				if v, ok := tokenMap["email"].(string); ok {
					rec.Email = v
				}
				if v, ok := tokenMap["username"].(string); ok {
					rec.Username = v
				}
				if v, ok := tokenMap["name"].(string); ok {
					rec.Name = v
				}
				if v, ok := tokenMap["extra"].(map[string]any); ok {
					rec.Extra = v
				}
				verifier.Add(token, rec)
			}
		}

		return NewStaticTokenAuthenticator(config, verifier), nil
	})
}
