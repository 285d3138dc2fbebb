package secret

import (
	"context"
	"errors"
	"testing"
)

// envProvider is a fixed-map Provider for tests.
type envProvider struct {
	values map[string]string
	err    error
}

func (p *envProvider) Name() string { return "vault" }

func (p *envProvider) Resolve(_ context.Context, ref string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.values[ref], nil
}

func TestParseSecretRef(t *testing.T) {
	tests := []struct {
		value        string
		wantProvider string
		wantRef      string
		wantOK       bool
	}{
		{value: "secretref:vault:auth/issuer", wantProvider: "vault", wantRef: "auth/issuer", wantOK: true},
		{value: "secretref:vault:", wantOK: false},
		{value: "secretref::ref", wantOK: false},
		{value: "https://issuer.example.com", wantOK: false},
		{value: "secretref:broken", wantOK: false},
	}

	for _, tt := range tests {
		provider, ref, ok := ParseSecretRef(tt.value)
		if ok != tt.wantOK {
			t.Errorf("ParseSecretRef(%q) ok = %v, want %v", tt.value, ok, tt.wantOK)
			continue
		}
		if ok && (provider != tt.wantProvider || ref != tt.wantRef) {
			t.Errorf("ParseSecretRef(%q) = %q, %q", tt.value, provider, ref)
		}
	}
}

func TestResolveValueFullRef(t *testing.T) {
	r := NewResolver(true, &envProvider{values: map[string]string{
		"auth/issuer": "https://issuer.example.com",
	}})

	got, err := r.ResolveValue(context.Background(), "secretref:vault:auth/issuer")
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != "https://issuer.example.com" {
		t.Errorf("got %q", got)
	}
}

func TestResolveValueEmbeddedRef(t *testing.T) {
	r := NewResolver(true, &envProvider{values: map[string]string{
		"auth/pat": "tg_pat_abc",
	}})

	got, err := r.ResolveValue(context.Background(), "token=secretref:vault:auth/pat")
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != "token=tg_pat_abc" {
		t.Errorf("got %q", got)
	}
}

func TestResolveValueEnvExpansion(t *testing.T) {
	t.Setenv("TEST_ISSUER", "https://issuer.example.com")

	r := NewResolver(false)
	got, err := r.ResolveValue(context.Background(), "${TEST_ISSUER}/jwks")
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != "https://issuer.example.com/jwks" {
		t.Errorf("got %q", got)
	}

	if _, err := r.ResolveValue(context.Background(), "${TEST_ISSUER_UNSET}"); err == nil {
		t.Error("missing environment variable accepted")
	}
}

func TestResolveValueUnknownProvider(t *testing.T) {
	r := NewResolver(true)
	if _, err := r.ResolveValue(context.Background(), "secretref:nope:ref"); err == nil {
		t.Error("unknown provider accepted")
	}
}

func TestResolveValueStrictRejectsEmpty(t *testing.T) {
	p := &envProvider{values: map[string]string{}}

	strict := NewResolver(true, p)
	if _, err := strict.ResolveValue(context.Background(), "secretref:vault:missing"); err == nil {
		t.Error("strict resolver accepted empty value")
	}

	lax := NewResolver(false, p)
	got, err := lax.ResolveValue(context.Background(), "secretref:vault:missing")
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestResolveValueProviderError(t *testing.T) {
	provErr := errors.New("backend unreachable")
	r := NewResolver(true, &envProvider{err: provErr})

	if _, err := r.ResolveValue(context.Background(), "secretref:vault:ref"); !errors.Is(err, provErr) {
		t.Errorf("error = %v, want %v", err, provErr)
	}
}

func TestNilResolverStillExpandsEnv(t *testing.T) {
	t.Setenv("TEST_PREFIX", "tg_pat_")

	var r *Resolver
	got, err := r.ResolveValue(context.Background(), "${TEST_PREFIX}")
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != "tg_pat_" {
		t.Errorf("got %q", got)
	}
}
