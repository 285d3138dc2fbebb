package auth

import (
	"context"
	"testing"
	"time"

	"github.com/jonwraymond/toolgate/cache"
)

// countingVerifier tracks backend lookups.
type countingVerifier struct {
	calls int
	users map[string]map[string]any
}

func (v *countingVerifier) VerifyToken(_ context.Context, token string, _ *AuthRequest) (map[string]any, error) {
	v.calls++
	return v.users[token], nil
}

func TestCachingVerifierCachesPositiveResults(t *testing.T) {
	backend := &countingVerifier{users: map[string]map[string]any{
		"tg_pat_x": {"user_id": "user-1"},
	}}
	v := NewCachingVerifier(backend, cache.NewMemoryCache(), cache.DefaultPolicy())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		user, err := v.VerifyToken(ctx, "tg_pat_x", nil)
		if err != nil {
			t.Fatalf("VerifyToken: %v", err)
		}
		if user["user_id"] != "user-1" {
			t.Errorf("user = %v", user)
		}
	}

	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls)
	}
}

func TestCachingVerifierNeverCachesNegatives(t *testing.T) {
	backend := &countingVerifier{users: map[string]map[string]any{}}
	v := NewCachingVerifier(backend, cache.NewMemoryCache(), cache.DefaultPolicy())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		user, err := v.VerifyToken(ctx, "tg_pat_unknown", nil)
		if err != nil {
			t.Fatalf("VerifyToken: %v", err)
		}
		if user != nil {
			t.Errorf("user = %v, want nil", user)
		}
	}

	// Unknown tokens hit the backend every time.
	if backend.calls != 3 {
		t.Errorf("backend calls = %d, want 3", backend.calls)
	}
}

func TestCachingVerifierNoCachePolicy(t *testing.T) {
	backend := &countingVerifier{users: map[string]map[string]any{
		"tg_pat_x": {"user_id": "user-1"},
	}}
	v := NewCachingVerifier(backend, cache.NewMemoryCache(), cache.NoCachePolicy())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := v.VerifyToken(ctx, "tg_pat_x", nil); err != nil {
			t.Fatalf("VerifyToken: %v", err)
		}
	}

	if backend.calls != 2 {
		t.Errorf("backend calls = %d, want 2", backend.calls)
	}
}

func TestCachingVerifierDropsCorruptEntries(t *testing.T) {
	backend := &countingVerifier{users: map[string]map[string]any{
		"tg_pat_x": {"user_id": "user-1"},
	}}
	store := cache.NewMemoryCache()
	v := NewCachingVerifier(backend, store, cache.DefaultPolicy())
	ctx := context.Background()

	// Plant an undecodable entry under the token's cache key.
	key := cache.NewDefaultKeyer().Key("static_token", "tg_pat_x")
	if err := store.Set(ctx, key, []byte("{not json"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	user, err := v.VerifyToken(ctx, "tg_pat_x", nil)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if user["user_id"] != "user-1" {
		t.Errorf("user = %v", user)
	}
	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls)
	}

	// The corrupt entry was replaced with a good one.
	if _, err := v.VerifyToken(ctx, "tg_pat_x", nil); err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if backend.calls != 1 {
		t.Errorf("backend calls after re-verify = %d, want 1", backend.calls)
	}
}

func TestCachingVerifierInvalidate(t *testing.T) {
	backend := &countingVerifier{users: map[string]map[string]any{
		"tg_pat_x": {"user_id": "user-1"},
	}}
	v := NewCachingVerifier(backend, cache.NewMemoryCache(), cache.DefaultPolicy())
	ctx := context.Background()

	if _, err := v.VerifyToken(ctx, "tg_pat_x", nil); err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	v.Invalidate(ctx, "tg_pat_x")

	if _, err := v.VerifyToken(ctx, "tg_pat_x", nil); err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if backend.calls != 2 {
		t.Errorf("backend calls = %d, want 2 after invalidation", backend.calls)
	}
}
