package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCSRFIssueAndValidate(t *testing.T) {
	store := NewCSRFStore(time.Hour)

	token, err := store.Issue("session-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, store.Validate("session-1", token))
}

func TestCSRFRejectsWrongToken(t *testing.T) {
	store := NewCSRFStore(time.Hour)

	_, err := store.Issue("session-1")
	require.NoError(t, err)

	require.ErrorIs(t, store.Validate("session-1", "forged"), ErrCSRFTokenInvalid)
}

func TestCSRFRejectsMissingToken(t *testing.T) {
	store := NewCSRFStore(time.Hour)

	require.ErrorIs(t, store.Validate("session-1", ""), ErrCSRFTokenMissing)
	require.ErrorIs(t, store.Validate("unknown-session", "anything"), ErrCSRFTokenMissing)
}

func TestCSRFRejectsExpiredToken(t *testing.T) {
	store := NewCSRFStore(time.Hour)

	current := time.Now()
	store.now = func() time.Time { return current }

	token, err := store.Issue("session-1")
	require.NoError(t, err)

	current = current.Add(time.Hour + time.Second)
	require.ErrorIs(t, store.Validate("session-1", token), ErrCSRFTokenExpired)

	// Expired entry is dropped; a retry reads as missing.
	require.ErrorIs(t, store.Validate("session-1", token), ErrCSRFTokenMissing)
}

func TestCSRFReissueReplacesToken(t *testing.T) {
	store := NewCSRFStore(time.Hour)

	first, err := store.Issue("session-1")
	require.NoError(t, err)
	second, err := store.Issue("session-1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	require.ErrorIs(t, store.Validate("session-1", first), ErrCSRFTokenInvalid)
	require.NoError(t, store.Validate("session-1", second))
	require.Equal(t, 1, store.Len())
}

func TestCSRFRevoke(t *testing.T) {
	store := NewCSRFStore(time.Hour)

	token, err := store.Issue("session-1")
	require.NoError(t, err)

	store.Revoke("session-1")
	require.ErrorIs(t, store.Validate("session-1", token), ErrCSRFTokenMissing)
}

func TestCSRFSweepDropsOnlyExpired(t *testing.T) {
	store := NewCSRFStore(time.Hour)

	current := time.Now()
	store.now = func() time.Time { return current }

	_, err := store.Issue("stale")
	require.NoError(t, err)

	current = current.Add(30 * time.Minute)
	_, err = store.Issue("fresh")
	require.NoError(t, err)

	current = current.Add(45 * time.Minute)
	require.Equal(t, 1, store.Sweep())
	require.Equal(t, 1, store.Len())
}

func TestCSRFIssueSweepsExpiredEntries(t *testing.T) {
	store := NewCSRFStore(time.Hour)

	current := time.Now()
	store.now = func() time.Time { return current }

	_, err := store.Issue("old-session")
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)
	_, err = store.Issue("new-session")
	require.NoError(t, err)

	require.Equal(t, 1, store.Len())
}
