package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// StaticTokenConfig configures the static-token ("PAT") authenticator.
type StaticTokenConfig struct {
	// HeaderName is the header carrying the token.
	// Default: "X-API-Key"
	HeaderName string

	// Prefix is the literal prefix the token value must start with
	// (e.g. "tg_pat_"). Empty disables the prefix check.
	Prefix string
}

// TokenVerifier maps a presented static token to user data.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: return (nil, nil) for unknown or expired tokens; an error
//   means the lookup itself failed (storage down, etc.).
// - The returned map may contain user_id, email, username, name plus
//   arbitrary application fields; all of it flows into the Identity.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string, req *AuthRequest) (map[string]any, error)
}

// StaticTokenAuthenticator validates prefixed static tokens against an
// application-supplied verifier.
type StaticTokenAuthenticator struct {
	config   StaticTokenConfig
	verifier TokenVerifier
}

// NewStaticTokenAuthenticator creates a static-token authenticator.
func NewStaticTokenAuthenticator(config StaticTokenConfig, verifier TokenVerifier) *StaticTokenAuthenticator {
	// Apply defaults
	if config.HeaderName == "" {
		config.HeaderName = "X-API-Key"
	}

	return &StaticTokenAuthenticator{
		config:   config,
		verifier: verifier,
	}
}

// Name returns "static_token".
func (a *StaticTokenAuthenticator) Name() string {
	return "static_token"
}

// HeaderName returns the configured token header.
func (a *StaticTokenAuthenticator) HeaderName() string {
	return a.config.HeaderName
}

// Supports returns true if the request carries the static-token header.
func (a *StaticTokenAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	return req.GetHeader(a.config.HeaderName) != ""
}

// Authenticate validates the static token. A token failing the prefix
// check is rejected without consulting the verifier.
func (a *StaticTokenAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	token := req.GetHeader(a.config.HeaderName)
	if token == "" {
		return AuthFailure(ErrMissingCredentials, "static_token"), nil
	}

	token = strings.TrimSpace(token)

	if a.config.Prefix != "" && !strings.HasPrefix(token, a.config.Prefix) {
		return AuthFailure(prefixFormatError(a.config.Prefix), "static_token"), nil
	}

	user, err := a.verifier.VerifyToken(ctx, token, req)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return AuthFailure(ErrInvalidCredentials, "static_token"), nil
	}

	return AuthSuccess(newIdentityFromMap(AuthMethodStaticToken, user)), nil
}

// HashToken hashes a static token with SHA-256 for storage and lookup.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// ConstantTimeCompare performs constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// TokenRecord is a registered static token in MemoryTokenVerifier.
type TokenRecord struct {
	// UserID, Email, Username, Name fill the Identity base fields.
	UserID   string
	Email    string
	Username string
	Name     string

	// Extra holds application fields passed through to Identity.Extra
	// (e.g. organization identifiers).
	Extra map[string]any

	// ExpiresAt is when this token expires (zero = never).
	ExpiresAt time.Time
}

// MemoryTokenVerifier is an in-memory TokenVerifier keyed by hashed
// token. Intended for tests and small embeddings; production verifiers
// typically query the application's own store.
type MemoryTokenVerifier struct {
	mu      sync.RWMutex
	records map[string]*TokenRecord // keyed by SHA-256 hex of the token
}

// NewMemoryTokenVerifier creates an empty in-memory verifier.
func NewMemoryTokenVerifier() *MemoryTokenVerifier {
	return &MemoryTokenVerifier{
		records: make(map[string]*TokenRecord),
	}
}

// Add registers a token. The raw token is hashed; it is never stored.
func (v *MemoryTokenVerifier) Add(token string, rec *TokenRecord) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.records[HashToken(token)] = rec
}

// Remove deletes a token. Idempotent.
func (v *MemoryTokenVerifier) Remove(token string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.records, HashToken(token))
}

// VerifyToken looks up the token by hash. Unknown or expired tokens
// return (nil, nil).
func (v *MemoryTokenVerifier) VerifyToken(_ context.Context, token string, _ *AuthRequest) (map[string]any, error) {
	v.mu.RLock()
	rec := v.records[HashToken(token)]
	v.mu.RUnlock()

	if rec == nil {
		return nil, nil
	}
	if !rec.ExpiresAt.IsZero() && time.Now().After(rec.ExpiresAt) {
		return nil, nil
	}

	user := make(map[string]any, len(rec.Extra)+4)
	for k, val := range rec.Extra {
		user[k] = val
	}
	if rec.UserID != "" {
		user["user_id"] = rec.UserID
	}
	if rec.Email != "" {
		user["email"] = rec.Email
	}
	if rec.Username != "" {
		user["username"] = rec.Username
	}
	if rec.Name != "" {
		user["name"] = rec.Name
	}

	return user, nil
}

// Ensure implementations satisfy their interfaces
var _ Authenticator = (*StaticTokenAuthenticator)(nil)
var _ TokenVerifier = (*MemoryTokenVerifier)(nil)
