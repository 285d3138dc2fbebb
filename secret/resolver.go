package secret

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// refPrefix marks a configuration value as a secret reference:
//
//	secretref:<provider>:<ref>
const refPrefix = "secretref:"

// Resolver turns raw configuration strings into usable values. Every
// value first goes through strict environment expansion; values that
// are (or contain) a secretref are then resolved through the matching
// provider. The auth factories run all string config through this, so
// an issuer URL or a seeded token can live in the environment or a
// secret store instead of the config file.
type Resolver struct {
	providers map[string]Provider

	// strict rejects empty provider results, which in this domain means
	// a credential or issuer that silently resolved to nothing.
	strict bool
}

// NewResolver creates a resolver over the given providers.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{
		providers: make(map[string]Provider),
		strict:    strict,
	}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds a provider. Later registrations with the same name win.
func (r *Resolver) Register(p Provider) {
	if r == nil || p == nil {
		return
	}
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	r.providers[p.Name()] = p
}

// ResolveValue resolves environment variables and secret references in
// value. A nil resolver still performs environment expansion, so the
// zero-configuration path keeps working.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil {
		return "", err
	}
	if r == nil {
		return expanded, nil
	}

	if providerName, ref, ok := ParseSecretRef(expanded); ok {
		return r.resolveRef(ctx, providerName, ref)
	}
	return r.resolveEmbedded(ctx, expanded)
}

// ParseSecretRef splits a full secret reference into its provider name
// and provider-specific ref. Values that are not a lone secretref
// return ok == false.
func ParseSecretRef(value string) (provider string, ref string, ok bool) {
	if !strings.HasPrefix(value, refPrefix) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(value, refPrefix), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (r *Resolver) resolveRef(ctx context.Context, providerName, ref string) (string, error) {
	provider, ok := r.providers[providerName]
	if !ok {
		return "", fmt.Errorf("secret provider %q is not registered", providerName)
	}

	resolved, err := provider.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if r.strict && resolved == "" {
		return "", fmt.Errorf("secret provider %q returned empty value for %q", providerName, ref)
	}
	return resolved, nil
}

var embeddedRefPattern = regexp.MustCompile(`secretref:([^:\s]+):([^\s]+)`)

// resolveEmbedded replaces secretrefs appearing inside a larger value,
// e.g. a header value of the form "Bearer secretref:vault:path".
func (r *Resolver) resolveEmbedded(ctx context.Context, value string) (string, error) {
	matches := embeddedRefPattern.FindAllStringSubmatchIndex(value, -1)
	if len(matches) == 0 {
		return value, nil
	}

	// Replace from the end so earlier match offsets stay valid.
	out := value
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		resolved, err := r.resolveRef(ctx, out[m[2]:m[3]], out[m[4]:m[5]])
		if err != nil {
			return "", err
		}
		out = out[:m[0]] + resolved + out[m[1]:]
	}
	return out, nil
}
