package auth

import (
	"encoding/json"
	"net/http"
)

// RequireAuth is HTTP middleware that authenticates every request with
// the dual authenticator. Failures are written as 401 with the
// challenge in WWW-Authenticate; on success the identity and the raw
// request headers are attached to the context for downstream handlers.
//
// Usage:
//
//	mux.Handle("/mcp", auth.RequireAuth(authn, mcpHandler))
func RequireAuth(authn *DualAuthenticator, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := &AuthRequest{
			Headers: r.Header,
			Metadata: map[string]any{
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.UserAgent(),
			},
		}

		identity, err := authn.Authenticate(r.Context(), req)
		if err != nil {
			writeAuthFailure(w, err)
			return
		}

		ctx := WithIdentity(r.Context(), identity)
		ctx = WithHeaders(ctx, r.Header)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeAuthFailure(w http.ResponseWriter, err error) {
	if ae, ok := AsAuthError(err); ok {
		w.Header().Set("WWW-Authenticate", ae.Challenge)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(ae.Status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": ae.Message})
		return
	}

	// Internal failure in a verifier; not a credential problem.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication backend unavailable"})
}
