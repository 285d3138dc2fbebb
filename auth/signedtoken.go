package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// bearerPrefix is the credential scheme prefix on the Authorization header.
const bearerPrefix = "Bearer "

// SignedTokenConfig configures the signed bearer-token authenticator.
type SignedTokenConfig struct {
	// Issuer is the expected token issuer (iss claim). Required.
	Issuer string

	// Algorithms are the acceptable signing algorithms.
	// Default: ["RS256"]
	Algorithms []string

	// VerifyAudience enables audience (aud claim) verification.
	VerifyAudience bool

	// Audience is the expected audience when VerifyAudience is set.
	Audience string
}

// KeyProvider retrieves signing keys for token verification.
type KeyProvider interface {
	// GetKey returns the key for the given key ID.
	GetKey(ctx context.Context, keyID string) (any, error)
}

// StaticKeyProvider provides a fixed verification key.
type StaticKeyProvider struct {
	key any
}

// NewStaticKeyProvider creates a static key provider.
func NewStaticKeyProvider(key any) *StaticKeyProvider {
	return &StaticKeyProvider{key: key}
}

// GetKey returns the static key.
func (p *StaticKeyProvider) GetKey(_ context.Context, _ string) (any, error) {
	return p.key, nil
}

// SignedTokenAuthenticator verifies signed bearer tokens against keys
// from a KeyProvider. Signature, time-based claims (exp, nbf, iat) and
// the issuer claim are always checked; the audience claim only when
// configured. Failure results carry the distinct internal reason; the
// caller decides what is safe to surface.
type SignedTokenAuthenticator struct {
	config      SignedTokenConfig
	keyProvider KeyProvider
	parser      *jwt.Parser
}

// NewSignedTokenAuthenticator creates a signed-token authenticator.
func NewSignedTokenAuthenticator(config SignedTokenConfig, keyProvider KeyProvider) *SignedTokenAuthenticator {
	// Apply defaults
	if len(config.Algorithms) == 0 {
		config.Algorithms = []string{"RS256"}
	}

	return &SignedTokenAuthenticator{
		config:      config,
		keyProvider: keyProvider,
		parser: jwt.NewParser(
			jwt.WithValidMethods(config.Algorithms),
			jwt.WithIssuedAt(),
			jwt.WithExpirationRequired(),
		),
	}
}

// Name returns "signed_token".
func (a *SignedTokenAuthenticator) Name() string {
	return "signed_token"
}

// Supports returns true if the request carries a bearer Authorization header.
func (a *SignedTokenAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	return strings.HasPrefix(req.GetHeader("Authorization"), bearerPrefix)
}

// Authenticate verifies the bearer token.
func (a *SignedTokenAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	header := req.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return AuthFailure(fmt.Errorf("%w: missing or invalid Authorization header", ErrMissingCredentials), "signed_token"), nil
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if tokenString == "" {
		return AuthFailure(fmt.Errorf("%w: missing or invalid Authorization header", ErrMissingCredentials), "signed_token"), nil
	}

	token, err := a.parser.Parse(tokenString, func(token *jwt.Token) (any, error) {
		kid := ""
		if kidVal, ok := token.Header["kid"].(string); ok {
			kid = kidVal
		}
		return a.keyProvider.GetKey(ctx, kid)
	})

	if err != nil {
		return AuthFailure(classifyTokenError(err), "signed_token"), nil
	}

	if !token.Valid {
		return AuthFailure(ErrInvalidCredentials, "signed_token"), nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AuthFailure(ErrTokenMalformed, "signed_token"), nil
	}

	// Issuer must match exactly.
	if iss, _ := claims["iss"].(string); iss != a.config.Issuer {
		return AuthFailure(fmt.Errorf("%w: issuer mismatch", ErrInvalidCredentials), "signed_token"), nil
	}

	// Audience only when enabled.
	if a.config.VerifyAudience {
		if !containsAudience(audienceClaim(claims), a.config.Audience) {
			return AuthFailure(fmt.Errorf("%w: audience mismatch", ErrInvalidCredentials), "signed_token"), nil
		}
	}

	return AuthSuccess(identityFromClaims(claims)), nil
}

// classifyTokenError maps verification failures onto the package's
// sentinel taxonomy, preserving detail for logging via wrapping.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, ErrKeySetFetch):
		return err
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
}

func audienceClaim(claims jwt.MapClaims) []string {
	switch v := claims["aud"].(type) {
	case string:
		return []string{v}
	case []any:
		result := make([]string, 0, len(v))
		for _, a := range v {
			if s, ok := a.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return nil
	}
}

func containsAudience(audiences []string, target string) bool {
	for _, aud := range audiences {
		if aud == target {
			return true
		}
	}
	return false
}

// identityFromClaims maps verified claims onto the Identity base fields.
// Missing optional claims leave the field empty, not an error.
func identityFromClaims(claims jwt.MapClaims) *Identity {
	id := &Identity{Method: AuthMethodSignedToken}

	if sub, ok := claims["sub"].(string); ok {
		id.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if username, ok := claims["preferred_username"].(string); ok {
		id.Username = username
	}
	if name, ok := claims["name"].(string); ok {
		id.Name = name
	}

	return id
}

// Ensure interfaces are satisfied
var _ Authenticator = (*SignedTokenAuthenticator)(nil)
var _ KeyProvider = (*StaticKeyProvider)(nil)
