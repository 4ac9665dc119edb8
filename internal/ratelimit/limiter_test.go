package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLimiter() (*Limiter, *time.Time) {
	l := New(map[string]Rule{
		RuleAuth:    {Window: time.Minute, Max: 3},
		RuleGeneral: {Window: time.Minute, Max: 100},
	})
	current := time.Now()
	l.now = func() time.Time { return current }
	return l, &current
}

func TestLimiterAllowsUpToMax(t *testing.T) {
	l, _ := testLimiter()

	for i := 0; i < 3; i++ {
		allowed, _ := l.Allow(RuleAuth, "ip:1.2.3.4")
		require.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, retryAfter := l.Allow(RuleAuth, "ip:1.2.3.4")
	require.False(t, allowed)
	require.Greater(t, retryAfter, time.Duration(0))
	require.LessOrEqual(t, retryAfter, time.Minute)
}

func TestLimiterWindowReset(t *testing.T) {
	l, current := testLimiter()

	for i := 0; i < 3; i++ {
		l.Allow(RuleAuth, "ip:1.2.3.4")
	}
	allowed, _ := l.Allow(RuleAuth, "ip:1.2.3.4")
	require.False(t, allowed)

	*current = current.Add(time.Minute + time.Second)
	allowed, _ = l.Allow(RuleAuth, "ip:1.2.3.4")
	require.True(t, allowed)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l, _ := testLimiter()

	for i := 0; i < 3; i++ {
		l.Allow(RuleAuth, "ip:1.2.3.4")
	}

	allowed, _ := l.Allow(RuleAuth, "ip:5.6.7.8")
	require.True(t, allowed)
}

func TestLimiterRulesAreIndependent(t *testing.T) {
	l, _ := testLimiter()

	for i := 0; i < 3; i++ {
		l.Allow(RuleAuth, "ip:1.2.3.4")
	}
	allowed, _ := l.Allow(RuleAuth, "ip:1.2.3.4")
	require.False(t, allowed)

	allowed, _ = l.Allow(RuleGeneral, "ip:1.2.3.4")
	require.True(t, allowed)
}

func TestLimiterUnknownRuleAlwaysAllows(t *testing.T) {
	l, _ := testLimiter()

	for i := 0; i < 1000; i++ {
		allowed, _ := l.Allow("no-such-rule", "ip:1.2.3.4")
		require.True(t, allowed)
	}
}

func TestLimiterRemaining(t *testing.T) {
	l, _ := testLimiter()

	require.Equal(t, 3, l.Remaining(RuleAuth, "ip:1.2.3.4"))
	l.Allow(RuleAuth, "ip:1.2.3.4")
	require.Equal(t, 2, l.Remaining(RuleAuth, "ip:1.2.3.4"))
}

func TestLimiterSweep(t *testing.T) {
	l, current := testLimiter()

	l.Allow(RuleAuth, "ip:1.2.3.4")
	l.Allow(RuleGeneral, "ip:1.2.3.4")

	*current = current.Add(2 * time.Minute)
	require.Equal(t, 2, l.Sweep())
	require.Equal(t, 0, l.Sweep())
}
