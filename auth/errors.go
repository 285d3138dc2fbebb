package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for authentication.
var (
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenMalformed     = errors.New("auth: token malformed")
	ErrKeyNotFound        = errors.New("auth: signing key not found")
	ErrKeySetFetch        = errors.New("auth: unable to fetch verification keys")
	ErrNoAuthenticator    = errors.New("auth: at least one authentication scheme must be configured")
)

// AuthError is the outward authentication failure. It always maps to
// HTTP 401 with a WWW-Authenticate challenge. Message is safe to show
// to the caller; underlying diagnostics are logged, never returned.
type AuthError struct {
	// Status is the HTTP status to return. Always http.StatusUnauthorized.
	Status int

	// Challenge is the WWW-Authenticate header value.
	Challenge string

	// Message is the caller-safe failure description.
	Message string

	// Reason is the underlying failure, for errors.Is checks and logging.
	Reason error
}

// Error returns the caller-safe message.
func (e *AuthError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying reason.
func (e *AuthError) Unwrap() error {
	return e.Reason
}

func newAuthError(challenge, message string, reason error) *AuthError {
	return &AuthError{
		Status:    http.StatusUnauthorized,
		Challenge: challenge,
		Message:   message,
		Reason:    reason,
	}
}

// AsAuthError returns err as an *AuthError if it is one.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func prefixFormatError(prefix string) error {
	return fmt.Errorf("%w: token must start with %q", ErrTokenMalformed, prefix)
}
