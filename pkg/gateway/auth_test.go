package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthenticator() *Authenticator {
	return NewAuthenticator(AuthOptions{
		APIKey:      "secret-key",
		ServiceUser: "svc",
		Tokens: map[string]string{
			"token-alice": "alice",
			"token-bob":   "bob",
		},
	})
}

func TestAuthenticateHeaderKey(t *testing.T) {
	a := testAuthenticator()

	identity, err := a.Authenticate(Credentials{HeaderKey: "secret-key"})
	require.NoError(t, err)
	assert.Equal(t, "svc", identity.UserID)
}

func TestAuthenticateQueryKey(t *testing.T) {
	a := testAuthenticator()

	identity, err := a.Authenticate(Credentials{QueryKey: "secret-key"})
	require.NoError(t, err)
	assert.Equal(t, "svc", identity.UserID)
}

func TestAuthenticateBearerToken(t *testing.T) {
	a := testAuthenticator()

	identity, err := a.Authenticate(Credentials{BearerToken: "token-alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.UserID)
}

func TestAuthenticateMissingCredentials(t *testing.T) {
	a := testAuthenticator()

	_, err := a.Authenticate(Credentials{})
	require.Error(t, err)
	assert.Equal(t, FailureUnauthenticated, KindOf(err))
}

func TestAuthenticatePrecedence(t *testing.T) {
	a := testAuthenticator()

	tests := []struct {
		name     string
		creds    Credentials
		wantUser string
		wantErr  bool
	}{
		{
			name:     "valid header wins over invalid query",
			creds:    Credentials{HeaderKey: "secret-key", QueryKey: "wrong"},
			wantUser: "svc",
		},
		{
			name: "invalid header fails even with valid bearer present",
			creds: Credentials{
				HeaderKey:   "wrong",
				BearerToken: "token-alice",
			},
			wantErr: true,
		},
		{
			name: "invalid query fails even with valid bearer present",
			creds: Credentials{
				QueryKey:    "wrong",
				BearerToken: "token-alice",
			},
			wantErr: true,
		},
		{
			name: "query checked when header absent",
			creds: Credentials{
				QueryKey:    "secret-key",
				BearerToken: "garbage",
			},
			wantUser: "svc",
		},
		{
			name:    "invalid bearer token",
			creds:   Credentials{BearerToken: "garbage"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := a.Authenticate(tt.creds)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, FailureUnauthenticated, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, identity.UserID)
		})
	}
}

func TestAuthenticateNoConfiguredKeyRejectsAll(t *testing.T) {
	a := NewAuthenticator(AuthOptions{})

	_, err := a.Authenticate(Credentials{HeaderKey: ""})
	assert.Error(t, err)

	// Even an empty configured key never matches a presented one.
	_, err = a.Authenticate(Credentials{HeaderKey: "anything"})
	assert.Error(t, err)
}
