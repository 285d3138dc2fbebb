package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/toolgate/observe"
)

// protectedResourcePath is the well-known location of the protected
// resource metadata document advertised on signed-token challenges.
const protectedResourcePath = "/.well-known/oauth-protected-resource"

// DualConfig configures the dual authenticator.
type DualConfig struct {
	// Static validates prefixed static tokens. Optional.
	Static *StaticTokenAuthenticator

	// Signed validates signed bearer tokens. Optional.
	Signed *SignedTokenAuthenticator

	// ResourceURL, when set, adds a resource_metadata pointer to the
	// WWW-Authenticate challenge on signed-token failures. Static-token
	// failures always get a bare challenge: there is no discovery
	// document for them.
	ResourceURL string

	// Logger receives failure detail. Defaults to a no-op logger.
	Logger observe.Logger
}

// DualAuthenticator authenticates a request with either a static token
// or a signed bearer token.
//
// Decision order:
//  1. Static-token header present: validate as static token. The
//     outcome is terminal; a failed static token never falls through
//     to the signed-token scheme, even with a wrong prefix. The header
//     is an explicit signal of the intended scheme, and silently
//     trying the other scheme would mask credential errors.
//  2. Otherwise, signed-token if configured.
//  3. Otherwise, authentication required.
type DualAuthenticator struct {
	static      *StaticTokenAuthenticator
	signed      *SignedTokenAuthenticator
	resourceURL string
	logger      observe.Logger
}

// NewDualAuthenticator creates a dual authenticator. At least one of
// the two schemes must be configured; this fails at construction, not
// at first request.
func NewDualAuthenticator(config DualConfig) (*DualAuthenticator, error) {
	if config.Static == nil && config.Signed == nil {
		return nil, ErrNoAuthenticator
	}

	logger := config.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}

	return &DualAuthenticator{
		static:      config.Static,
		signed:      config.Signed,
		resourceURL: config.ResourceURL,
		logger:      logger,
	}, nil
}

// Schemes returns the configured scheme tags, static first.
func (d *DualAuthenticator) Schemes() []string {
	schemes := make([]string, 0, 2)
	if d.static != nil {
		schemes = append(schemes, string(AuthMethodStaticToken))
	}
	if d.signed != nil {
		schemes = append(schemes, string(AuthMethodSignedToken))
	}
	return schemes
}

// StaticTokenHeader returns the configured static-token header name, or
// empty when the static scheme is not configured.
func (d *DualAuthenticator) StaticTokenHeader() string {
	if d.static == nil {
		return ""
	}
	return d.static.HeaderName()
}

// Authenticate produces an Identity or an *AuthError. Any non-AuthError
// return is an internal failure (verifier storage down, etc.).
func (d *DualAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*Identity, error) {
	// Static token first; its outcome is terminal.
	if d.static != nil && d.static.Supports(ctx, req) {
		result, err := d.static.Authenticate(ctx, req)
		if err != nil {
			d.logger.Error(ctx, "static token verification error", observe.Field{Key: "error", Value: err.Error()})
			return nil, err
		}
		if result.Authenticated {
			return result.Identity, nil
		}

		d.logger.Warn(ctx, "static token validation failed", observe.Field{Key: "reason", Value: result.Error.Error()})
		return nil, newAuthError("Bearer", staticFailureMessage(result.Error), result.Error)
	}

	// Fall back to the signed-token scheme.
	if d.signed != nil {
		result, err := d.signed.Authenticate(ctx, req)
		if err != nil {
			d.logger.Error(ctx, "signed token verification error", observe.Field{Key: "error", Value: err.Error()})
			return nil, err
		}
		if result.Authenticated {
			return result.Identity, nil
		}

		// Full detail is logged; the caller sees the safe class only.
		d.logger.Warn(ctx, "signed token validation failed", observe.Field{Key: "reason", Value: result.Error.Error()})
		return nil, newAuthError(d.signedChallenge(), signedFailureMessage(result.Error), result.Error)
	}

	return nil, newAuthError("Bearer", "authentication required", ErrMissingCredentials)
}

// signedChallenge builds the WWW-Authenticate value for signed-token
// failures, with a protected-resource metadata pointer when configured.
func (d *DualAuthenticator) signedChallenge() string {
	if d.resourceURL == "" {
		return "Bearer"
	}
	return fmt.Sprintf("Bearer resource_metadata=%q", d.resourceURL+protectedResourcePath)
}

// staticFailureMessage maps static-token failures to caller-safe text.
// Prefix-format errors already name the expected prefix and pass
// through verbatim.
func staticFailureMessage(reason error) string {
	switch {
	case errors.Is(reason, ErrTokenMalformed):
		return reason.Error()
	case errors.Is(reason, ErrInvalidCredentials):
		return "invalid or expired personal access token"
	default:
		return "invalid or expired personal access token"
	}
}

// signedFailureMessage maps signed-token failures to caller-safe text.
// Cryptographic detail stays in the logs.
func signedFailureMessage(reason error) string {
	switch {
	case errors.Is(reason, ErrMissingCredentials):
		return "missing or invalid Authorization header"
	case errors.Is(reason, ErrKeySetFetch):
		return "unable to fetch verification keys"
	case errors.Is(reason, ErrTokenExpired):
		return "token has expired"
	default:
		return "token invalid"
	}
}
