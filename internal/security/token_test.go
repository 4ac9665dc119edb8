package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	signed, err := GenerateAccessToken("secret", "user-1", "sess-1", "business_owner", "ws-1", time.Minute)
	require.NoError(t, err)

	claims, err := ParseAccessToken(signed, "secret")
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "sess-1", claims.SessionID)
	require.Equal(t, "business_owner", claims.Role)
	require.Equal(t, "ws-1", claims.WorkspaceID)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	signed, err := GenerateAccessToken("secret", "user-1", "sess-1", "user", "", time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(signed, "other-secret")
	require.Error(t, err)
}

func TestAccessTokenExpired(t *testing.T) {
	signed, err := GenerateAccessToken("secret", "user-1", "sess-1", "user", "", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(signed, "secret")
	require.Error(t, err)
}

func TestOpaqueTokenHashMatches(t *testing.T) {
	token, hash, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, hash, HashToken(token))
}

func TestOpaqueTokensAreUnique(t *testing.T) {
	a, _, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	b, _, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
