package secret

import "context"

// Provider resolves a secret by reference string. Providers back the
// "secretref:" values accepted in authenticator configuration (issuer
// URLs, seeded tokens).
//
// Implementations must be safe for concurrent use and must never log
// the resolved value.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
}
