package auth

// AuthMethod indicates which credential scheme authenticated the caller.
type AuthMethod string

const (
	AuthMethodStaticToken AuthMethod = "static_token"
	AuthMethodSignedToken AuthMethod = "signed_token"
)

// Identity is the normalized authenticated-caller record produced by
// either credential scheme. Method is always set; the other base fields
// may be empty depending on upstream claims or the verifier result.
type Identity struct {
	// UserID is the opaque caller identifier (subject claim for signed
	// tokens, user_id field for static tokens).
	UserID string

	// Email is the caller's email address, if known.
	Email string

	// Username is the caller's preferred username, if known.
	Username string

	// Name is the caller's display name, if known.
	Name string

	// Method is the scheme that produced this identity.
	Method AuthMethod

	// Extra carries application-defined fields from static-token
	// verification, passed through verbatim. Never contains the base
	// field names: base fields win on collision.
	Extra map[string]any
}

// identityFieldNames are the reserved base field names that Extra must
// never shadow.
var identityFieldNames = map[string]bool{
	"user_id":     true,
	"email":       true,
	"username":    true,
	"name":        true,
	"auth_method": true,
}

// newIdentityFromMap builds an Identity from an application-supplied
// verification result. Recognized keys fill the base fields; all other
// keys pass through into Extra unmodified.
func newIdentityFromMap(method AuthMethod, user map[string]any) *Identity {
	id := &Identity{Method: method}

	if v, ok := user["user_id"].(string); ok {
		id.UserID = v
	}
	if v, ok := user["email"].(string); ok {
		id.Email = v
	}
	if v, ok := user["username"].(string); ok {
		id.Username = v
	}
	if v, ok := user["name"].(string); ok {
		id.Name = v
	}

	for k, v := range user {
		if identityFieldNames[k] {
			continue
		}
		if id.Extra == nil {
			id.Extra = make(map[string]any)
		}
		id.Extra[k] = v
	}

	return id
}
