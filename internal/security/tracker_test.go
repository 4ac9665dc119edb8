package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testTracker() (*SessionTracker, *time.Time) {
	tracker := NewSessionTracker(TrackerConfig{
		IdleTimeout:      30 * time.Minute,
		ReauthWindow:     5 * time.Minute,
		LockoutThreshold: 3,
		LockoutDuration:  15 * time.Minute,
	})
	current := time.Now()
	tracker.now = func() time.Time { return current }
	return tracker, &current
}

func TestTrackerTouchWithinTimeout(t *testing.T) {
	tracker, current := testTracker()

	require.True(t, tracker.Touch("u1"))
	*current = current.Add(29 * time.Minute)
	require.True(t, tracker.Touch("u1"))
}

func TestTrackerTouchAfterIdleTimeout(t *testing.T) {
	tracker, current := testTracker()

	require.True(t, tracker.Touch("u1"))
	*current = current.Add(31 * time.Minute)
	require.False(t, tracker.Touch("u1"))

	// The failed touch stamped activity; the user is live again.
	require.True(t, tracker.Touch("u1"))
}

func TestTrackerLockoutAfterRepeatedFailures(t *testing.T) {
	tracker, current := testTracker()

	require.False(t, tracker.RecordLoginFailure("u1"))
	require.False(t, tracker.RecordLoginFailure("u1"))
	require.False(t, tracker.Locked("u1"))

	require.True(t, tracker.RecordLoginFailure("u1"))
	require.True(t, tracker.Locked("u1"))

	*current = current.Add(16 * time.Minute)
	require.False(t, tracker.Locked("u1"))
}

func TestTrackerSuccessResetsFailures(t *testing.T) {
	tracker, _ := testTracker()

	tracker.RecordLoginFailure("u1")
	tracker.RecordLoginFailure("u1")
	tracker.RecordLoginSuccess("u1")

	require.False(t, tracker.RecordLoginFailure("u1"))
	require.False(t, tracker.Locked("u1"))
}

func TestTrackerRecentlyAuthenticated(t *testing.T) {
	tracker, current := testTracker()

	require.False(t, tracker.RecentlyAuthenticated("u1"))

	tracker.RecordLoginSuccess("u1")
	require.True(t, tracker.RecentlyAuthenticated("u1"))

	*current = current.Add(6 * time.Minute)
	require.False(t, tracker.RecentlyAuthenticated("u1"))
}

func TestTrackerSweep(t *testing.T) {
	tracker, current := testTracker()

	tracker.Touch("idle-user")
	*current = current.Add(20 * time.Minute)
	tracker.Touch("active-user")

	*current = current.Add(15 * time.Minute)
	require.Equal(t, 1, tracker.Sweep())
	require.True(t, tracker.Touch("active-user"))
}

func TestTrackerSweepKeepsLockedUsers(t *testing.T) {
	tracker, current := testTracker()

	tracker.RecordLoginFailure("locked")
	tracker.RecordLoginFailure("locked")
	tracker.RecordLoginFailure("locked")

	// No activity recorded, but the entry must survive while the
	// lockout runs.
	*current = current.Add(10 * time.Minute)
	require.Equal(t, 0, tracker.Sweep())
	require.True(t, tracker.Locked("locked"))
}
