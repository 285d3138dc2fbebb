package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newDualForTest(t *testing.T, resourceURL string) (*DualAuthenticator, *MemoryTokenVerifier) {
	t.Helper()

	verifier := NewMemoryTokenVerifier()
	verifier.Add("tg_pat_valid", &TokenRecord{UserID: "user-1", Email: "alice@example.com"})

	key := newTestKey(t)
	d, err := NewDualAuthenticator(DualConfig{
		Static: NewStaticTokenAuthenticator(StaticTokenConfig{Prefix: "tg_pat_"}, verifier),
		Signed: NewSignedTokenAuthenticator(
			SignedTokenConfig{Issuer: testIssuer},
			NewStaticKeyProvider(&key.PublicKey),
		),
		ResourceURL: resourceURL,
	})
	if err != nil {
		t.Fatalf("NewDualAuthenticator: %v", err)
	}
	return d, verifier
}

func TestDualRequiresAtLeastOneScheme(t *testing.T) {
	if _, err := NewDualAuthenticator(DualConfig{}); !errors.Is(err, ErrNoAuthenticator) {
		t.Errorf("error = %v, want %v", err, ErrNoAuthenticator)
	}
}

func TestDualStaticTokenSuccess(t *testing.T) {
	d, _ := newDualForTest(t, "")

	req := &AuthRequest{Headers: map[string][]string{"X-API-Key": {"tg_pat_valid"}}}
	id, err := d.Authenticate(context.Background(), req)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id.UserID != "user-1" || id.Method != AuthMethodStaticToken {
		t.Errorf("identity = %+v", id)
	}
}

// A static-token header is an explicit scheme selection. When it fails,
// the request must not be retried against the signed-token scheme, even
// if it also carries a valid bearer token.
func TestDualStaticOutcomeIsTerminal(t *testing.T) {
	d, _ := newDualForTest(t, "")

	key := newTestKey(t)
	req := &AuthRequest{Headers: map[string][]string{
		"X-API-Key":     {"wrong-prefix-token"},
		"Authorization": {"Bearer " + signToken(t, key, defaultClaims())},
	}}

	id, err := d.Authenticate(context.Background(), req)
	if id != nil {
		t.Fatalf("identity = %+v, want nil", id)
	}

	ae, ok := AsAuthError(err)
	if !ok {
		t.Fatalf("error = %v, want *AuthError", err)
	}
	if !errors.Is(ae.Reason, ErrTokenMalformed) {
		t.Errorf("reason = %v, want %v", ae.Reason, ErrTokenMalformed)
	}
}

func TestDualStaticFailureMessages(t *testing.T) {
	d, _ := newDualForTest(t, "")
	ctx := context.Background()

	t.Run("prefix error passes through verbatim", func(t *testing.T) {
		req := &AuthRequest{Headers: map[string][]string{"X-API-Key": {"bad"}}}
		_, err := d.Authenticate(ctx, req)
		ae, ok := AsAuthError(err)
		if !ok {
			t.Fatalf("error = %v", err)
		}
		if !strings.Contains(ae.Message, `token must start with "tg_pat_"`) {
			t.Errorf("message = %q", ae.Message)
		}
		if ae.Challenge != "Bearer" {
			t.Errorf("challenge = %q", ae.Challenge)
		}
	})

	t.Run("unknown token gets generic message", func(t *testing.T) {
		req := &AuthRequest{Headers: map[string][]string{"X-API-Key": {"tg_pat_unknown"}}}
		_, err := d.Authenticate(ctx, req)
		ae, ok := AsAuthError(err)
		if !ok {
			t.Fatalf("error = %v", err)
		}
		if ae.Message != "invalid or expired personal access token" {
			t.Errorf("message = %q", ae.Message)
		}
	})
}

func TestDualSignedTokenSuccess(t *testing.T) {
	verifier := NewMemoryTokenVerifier()
	key := newTestKey(t)

	d, err := NewDualAuthenticator(DualConfig{
		Static: NewStaticTokenAuthenticator(StaticTokenConfig{Prefix: "tg_pat_"}, verifier),
		Signed: NewSignedTokenAuthenticator(
			SignedTokenConfig{Issuer: testIssuer},
			NewStaticKeyProvider(&key.PublicKey),
		),
	})
	if err != nil {
		t.Fatalf("NewDualAuthenticator: %v", err)
	}

	id, err := d.Authenticate(context.Background(), bearerRequest(signToken(t, key, defaultClaims())))
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id.UserID != "user-1" || id.Method != AuthMethodSignedToken {
		t.Errorf("identity = %+v", id)
	}
}

func TestDualSignedFailureMessages(t *testing.T) {
	key := newTestKey(t)
	otherKey := newTestKey(t)

	expired := defaultClaims()
	expired["exp"] = 1000000

	tests := []struct {
		name        string
		request     *AuthRequest
		wantMessage string
	}{
		{
			name:        "no credentials at all",
			request:     &AuthRequest{Headers: map[string][]string{}},
			wantMessage: "missing or invalid Authorization header",
		},
		{
			name:        "expired token",
			request:     bearerRequest(signToken(t, key, expired)),
			wantMessage: "token has expired",
		},
		{
			name:        "wrong signing key",
			request:     bearerRequest(signToken(t, otherKey, defaultClaims())),
			wantMessage: "token invalid",
		},
	}

	d, _ := newDualForTest(t, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Authenticate(context.Background(), tt.request)
			ae, ok := AsAuthError(err)
			if !ok {
				t.Fatalf("error = %v, want *AuthError", err)
			}
			if ae.Status != 401 {
				t.Errorf("status = %d", ae.Status)
			}
			if ae.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", ae.Message, tt.wantMessage)
			}
		})
	}
}

func TestDualKeySetFailureMessage(t *testing.T) {
	verifier := NewMemoryTokenVerifier()
	key := newTestKey(t)

	d, err := NewDualAuthenticator(DualConfig{
		Static: NewStaticTokenAuthenticator(StaticTokenConfig{Prefix: "tg_pat_"}, verifier),
		Signed: NewSignedTokenAuthenticator(
			SignedTokenConfig{Issuer: testIssuer},
			&failingKeyProvider{err: ErrKeySetFetch},
		),
	})
	if err != nil {
		t.Fatalf("NewDualAuthenticator: %v", err)
	}

	_, err = d.Authenticate(context.Background(), bearerRequest(signToken(t, key, defaultClaims())))
	ae, ok := AsAuthError(err)
	if !ok {
		t.Fatalf("error = %v", err)
	}
	if ae.Message != "unable to fetch verification keys" {
		t.Errorf("message = %q", ae.Message)
	}
}

func TestDualChallenge(t *testing.T) {
	ctx := context.Background()

	t.Run("bare challenge without resource URL", func(t *testing.T) {
		d, _ := newDualForTest(t, "")
		_, err := d.Authenticate(ctx, bearerRequest("not.a.jwt"))
		ae, _ := AsAuthError(err)
		if ae.Challenge != "Bearer" {
			t.Errorf("challenge = %q", ae.Challenge)
		}
	})

	t.Run("resource metadata pointer on signed failures", func(t *testing.T) {
		d, _ := newDualForTest(t, "https://gate.example.com")
		_, err := d.Authenticate(ctx, bearerRequest("not.a.jwt"))
		ae, _ := AsAuthError(err)
		want := `Bearer resource_metadata="https://gate.example.com/.well-known/oauth-protected-resource"`
		if ae.Challenge != want {
			t.Errorf("challenge = %q, want %q", ae.Challenge, want)
		}
	})

	t.Run("static failures never get the pointer", func(t *testing.T) {
		d, _ := newDualForTest(t, "https://gate.example.com")
		req := &AuthRequest{Headers: map[string][]string{"X-API-Key": {"tg_pat_unknown"}}}
		_, err := d.Authenticate(ctx, req)
		ae, _ := AsAuthError(err)
		if ae.Challenge != "Bearer" {
			t.Errorf("challenge = %q", ae.Challenge)
		}
	})
}

func TestDualNoCredentials(t *testing.T) {
	d, _ := newDualForTest(t, "")

	_, err := d.Authenticate(context.Background(), &AuthRequest{Headers: map[string][]string{}})
	ae, ok := AsAuthError(err)
	if !ok {
		t.Fatalf("error = %v", err)
	}
	if !errors.Is(ae.Reason, ErrMissingCredentials) {
		t.Errorf("reason = %v", ae.Reason)
	}
}

func TestDualStaticOnlyMissingHeader(t *testing.T) {
	verifier := NewMemoryTokenVerifier()
	d, err := NewDualAuthenticator(DualConfig{
		Static: NewStaticTokenAuthenticator(StaticTokenConfig{Prefix: "tg_pat_"}, verifier),
	})
	if err != nil {
		t.Fatalf("NewDualAuthenticator: %v", err)
	}

	_, err = d.Authenticate(context.Background(), &AuthRequest{Headers: map[string][]string{}})
	ae, ok := AsAuthError(err)
	if !ok {
		t.Fatalf("error = %v", err)
	}
	if ae.Message != "authentication required" {
		t.Errorf("message = %q", ae.Message)
	}
}

func TestDualInternalErrorIsNotAuthError(t *testing.T) {
	backendErr := errors.New("storage down")
	d, err := NewDualAuthenticator(DualConfig{
		Static: NewStaticTokenAuthenticator(StaticTokenConfig{}, &verifierWithError{err: backendErr}),
	})
	if err != nil {
		t.Fatalf("NewDualAuthenticator: %v", err)
	}

	req := &AuthRequest{Headers: map[string][]string{"X-API-Key": {"anything"}}}
	_, err = d.Authenticate(context.Background(), req)
	if _, ok := AsAuthError(err); ok {
		t.Errorf("internal failure surfaced as AuthError: %v", err)
	}
	if !errors.Is(err, backendErr) {
		t.Errorf("error = %v, want %v", err, backendErr)
	}
}

func TestDualSchemes(t *testing.T) {
	d, _ := newDualForTest(t, "")
	schemes := d.Schemes()
	if len(schemes) != 2 || schemes[0] != "static_token" || schemes[1] != "signed_token" {
		t.Errorf("schemes = %v", schemes)
	}

	if got := d.StaticTokenHeader(); got != "X-API-Key" {
		t.Errorf("StaticTokenHeader = %q", got)
	}

	key := newTestKey(t)
	signedOnly, err := NewDualAuthenticator(DualConfig{
		Signed: NewSignedTokenAuthenticator(
			SignedTokenConfig{Issuer: testIssuer},
			NewStaticKeyProvider(&key.PublicKey),
		),
	})
	if err != nil {
		t.Fatalf("NewDualAuthenticator: %v", err)
	}
	if got := signedOnly.StaticTokenHeader(); got != "" {
		t.Errorf("StaticTokenHeader = %q, want empty", got)
	}
}
