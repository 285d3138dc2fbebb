// Package secret resolves configuration values that reference the
// environment or a secret store.
//
// Every value goes through strict environment expansion (ExpandEnvStrict);
// values of the form secretref:<provider>:<ref>, whole or embedded, are
// then resolved through a registered Provider. The auth factories run
// their string configuration through a Resolver, so values like
//
//	issuer:   ${SIGNING_ISSUER_URL}
//	jwks_url: secretref:vault:auth/jwks_url
//
// never require the secret itself to appear in the config file.
package secret
