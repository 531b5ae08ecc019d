package gateway

import (
	"crypto/subtle"
)

// CallerIdentity is the authenticated user context a tool executes under.
// It is resolved once per call and never persisted by the gateway.
type CallerIdentity struct {
	UserID string `json:"user_id"`
}

// Credentials carries the raw credential material extracted from a request.
// Only the fields that were actually present on the request are set.
type Credentials struct {
	HeaderKey   string // API key from the designated header
	QueryKey    string // API key from the query parameter
	BearerToken string // token from the Authorization header
}

// Authenticator resolves caller identity from request credentials.
//
// Precedence is fixed: a header-carried API key is checked first, then a
// query-parameter API key, then a bearer token. The first credential that
// is present decides the outcome; a present-but-invalid credential fails
// the call instead of falling through to a later one.
type Authenticator struct {
	apiKey      string
	serviceUser string
	tokens      map[string]string // bearer token -> user id
}

// AuthOptions configures an Authenticator.
type AuthOptions struct {
	// APIKey is the shared API key accepted via header or query parameter.
	APIKey string
	// ServiceUser is the user identity attributed to API-key callers.
	ServiceUser string
	// Tokens maps bearer tokens to user identities.
	Tokens map[string]string
}

// NewAuthenticator creates an authenticator from static credential
// configuration.
func NewAuthenticator(opts AuthOptions) *Authenticator {
	serviceUser := opts.ServiceUser
	if serviceUser == "" {
		serviceUser = "api_user"
	}
	tokens := make(map[string]string, len(opts.Tokens))
	for token, user := range opts.Tokens {
		tokens[token] = user
	}
	return &Authenticator{
		apiKey:      opts.APIKey,
		serviceUser: serviceUser,
		tokens:      tokens,
	}
}

// Authenticate resolves the caller identity or fails with an
// unauthenticated error.
func (a *Authenticator) Authenticate(creds Credentials) (CallerIdentity, error) {
	if creds.HeaderKey != "" {
		if !a.verifyAPIKey(creds.HeaderKey) {
			return CallerIdentity{}, NewError(FailureUnauthenticated, "invalid API key")
		}
		return CallerIdentity{UserID: a.serviceUser}, nil
	}

	if creds.QueryKey != "" {
		if !a.verifyAPIKey(creds.QueryKey) {
			return CallerIdentity{}, NewError(FailureUnauthenticated, "invalid API key")
		}
		return CallerIdentity{UserID: a.serviceUser}, nil
	}

	if creds.BearerToken != "" {
		user, ok := a.verifyToken(creds.BearerToken)
		if !ok {
			return CallerIdentity{}, NewError(FailureUnauthenticated, "invalid token")
		}
		return CallerIdentity{UserID: user}, nil
	}

	return CallerIdentity{}, NewError(FailureUnauthenticated, "missing credentials")
}

// verifyAPIKey compares a presented key against the configured key in
// constant time. An empty configured key rejects everything.
func (a *Authenticator) verifyAPIKey(presented string) bool {
	if a.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.apiKey), []byte(presented)) == 1
}

// verifyToken looks up a bearer token. Every configured token is compared
// so lookup time does not depend on the match position.
func (a *Authenticator) verifyToken(presented string) (string, bool) {
	var matched string
	found := false
	for token, user := range a.tokens {
		if subtle.ConstantTimeCompare([]byte(token), []byte(presented)) == 1 {
			matched = user
			found = true
		}
	}
	return matched, found
}
