// Package ratelimit implements per-client fixed-window request
// counting with named rule sets. Counters live in process memory: they
// reset on restart and are not shared across instances.
package ratelimit

import (
	"sync"
	"time"
)

// Rule names, each carrying its own window/threshold pair.
const (
	RuleGeneral    = "general"
	RuleAuth       = "auth"
	RuleUpload     = "upload"
	RulePayment    = "payment"
	RuleInvitation = "invitation"
	RuleSensitive  = "sensitive"
	RuleCSRF       = "csrf"
)

type Rule struct {
	Window time.Duration
	Max    int
}

type window struct {
	start time.Time
	count int
}

type Limiter struct {
	mu      sync.Mutex
	rules   map[string]Rule
	windows map[string]*window
	now     func() time.Time
}

func New(rules map[string]Rule) *Limiter {
	return &Limiter{
		rules:   rules,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow counts one request for key under the named rule and reports
// whether it fits in the current window. When denied, retryAfter is how
// long until the window resets. Unknown rule names always allow.
func (l *Limiter) Allow(rule, key string) (allowed bool, retryAfter time.Duration) {
	cfg, ok := l.rules[rule]
	if !ok || cfg.Max <= 0 {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	id := rule + ":" + key
	w, ok := l.windows[id]
	if !ok || now.Sub(w.start) >= cfg.Window {
		l.windows[id] = &window{start: now, count: 1}
		return true, 0
	}

	if w.count >= cfg.Max {
		return false, cfg.Window - now.Sub(w.start)
	}
	w.count++
	return true, 0
}

// Remaining reports how many requests key has left in its current
// window under the named rule.
func (l *Limiter) Remaining(rule, key string) int {
	cfg, ok := l.rules[rule]
	if !ok {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[rule+":"+key]
	if !ok || l.now().Sub(w.start) >= cfg.Window {
		return cfg.Max
	}
	if w.count >= cfg.Max {
		return 0
	}
	return cfg.Max - w.count
}

// Sweep drops windows that have fully elapsed and reports how many
// were removed. Run periodically so abandoned keys do not accumulate.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for id, w := range l.windows {
		rule, ok := l.rules[ruleOf(id)]
		if !ok || now.Sub(w.start) >= rule.Window {
			delete(l.windows, id)
			removed++
		}
	}
	return removed
}

func ruleOf(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == ':' {
			return id[:i]
		}
	}
	return id
}
