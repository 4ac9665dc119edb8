package security

import (
	"sync"
	"time"
)

type TrackerConfig struct {
	IdleTimeout      time.Duration
	ReauthWindow     time.Duration
	LockoutThreshold int
	LockoutDuration  time.Duration
}

type userActivity struct {
	lastActivity time.Time
	lastLogin    time.Time
	failedLogins int
	lockedUntil  time.Time
}

// SessionTracker keeps per-user activity and failed-login state in
// memory: idle timeout, lockout after repeated failures, and a
// recent-authentication check for sensitive endpoints. State does not
// survive a restart.
type SessionTracker struct {
	mu    sync.Mutex
	users map[string]*userActivity
	cfg   TrackerConfig
	now   func() time.Time
}

func NewSessionTracker(cfg TrackerConfig) *SessionTracker {
	return &SessionTracker{
		users: make(map[string]*userActivity),
		cfg:   cfg,
		now:   time.Now,
	}
}

func (t *SessionTracker) entry(userID string) *userActivity {
	activity, ok := t.users[userID]
	if !ok {
		activity = &userActivity{}
		t.users[userID] = activity
	}
	return activity
}

// Touch records activity. Returns false when the user has been idle
// past the timeout, in which case the caller should treat the session
// as expired. A first touch after restart always succeeds.
func (t *SessionTracker) Touch(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	activity := t.entry(userID)
	idle := !activity.lastActivity.IsZero() && now.Sub(activity.lastActivity) > t.cfg.IdleTimeout
	activity.lastActivity = now
	return !idle
}

// RecordLoginFailure bumps the consecutive-failure counter and starts a
// lockout once the threshold is reached. Returns true when the account
// is now locked.
func (t *SessionTracker) RecordLoginFailure(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	activity := t.entry(userID)
	activity.failedLogins++
	if activity.failedLogins >= t.cfg.LockoutThreshold {
		activity.lockedUntil = t.now().Add(t.cfg.LockoutDuration)
		return true
	}
	return false
}

// RecordLoginSuccess clears failure state and stamps the login time
// used by RequireRecentAuth.
func (t *SessionTracker) RecordLoginSuccess(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	activity := t.entry(userID)
	activity.failedLogins = 0
	activity.lockedUntil = time.Time{}
	now := t.now()
	activity.lastLogin = now
	activity.lastActivity = now
}

// Locked reports whether the user is currently in a lockout window.
// An elapsed lockout resets the failure counter.
func (t *SessionTracker) Locked(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	activity, ok := t.users[userID]
	if !ok || activity.lockedUntil.IsZero() {
		return false
	}
	if t.now().Before(activity.lockedUntil) {
		return true
	}
	activity.lockedUntil = time.Time{}
	activity.failedLogins = 0
	return false
}

// RecentlyAuthenticated reports whether the user logged in within the
// re-auth window, as required for sensitive endpoints.
func (t *SessionTracker) RecentlyAuthenticated(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	activity, ok := t.users[userID]
	if !ok || activity.lastLogin.IsZero() {
		return false
	}
	return t.now().Sub(activity.lastLogin) <= t.cfg.ReauthWindow
}

// Sweep drops users idle past the timeout with no active lockout, and
// reports how many entries were removed.
func (t *SessionTracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	removed := 0
	for userID, activity := range t.users {
		if now.Sub(activity.lastActivity) > t.cfg.IdleTimeout && !now.Before(activity.lockedUntil) {
			delete(t.users, userID)
			removed++
		}
	}
	return removed
}
