// Package auth provides dual authentication for tool-serving HTTP endpoints.
//
// Two credential schemes are supported: a prefixed static token ("PAT")
// presented via a dedicated header and validated by an application-supplied
// lookup, and a signed bearer token verified against a published key set
// (JWKS). DualAuthenticator composes the two with static-token priority and
// produces a normalized Identity either way. The package is transport-thin:
// RequireAuth adapts the authenticator to net/http middleware.
package auth
