package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	ErrCSRFTokenExpired = errors.New("csrf token expired")
	ErrCSRFTokenInvalid = errors.New("csrf token invalid")
)

type csrfEntry struct {
	token     string
	expiresAt time.Time
}

// CSRFStore issues per-session anti-forgery tokens and validates them
// on state-changing requests. In-memory only: tokens do not survive a
// restart and are not shared between instances.
type CSRFStore struct {
	mu     sync.Mutex
	tokens map[string]csrfEntry
	ttl    time.Duration
	now    func() time.Time
}

func NewCSRFStore(ttl time.Duration) *CSRFStore {
	return &CSRFStore{
		tokens: make(map[string]csrfEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a fresh token for the session, replacing any previous
// one. Expired entries for other sessions are swept opportunistically.
func (s *CSRFStore) Issue(sessionKey string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.tokens {
		if now.After(entry.expiresAt) {
			delete(s.tokens, key)
		}
	}

	s.tokens[sessionKey] = csrfEntry{
		token:     token,
		expiresAt: now.Add(s.ttl),
	}
	return token, nil
}

// Validate checks expiry first, then compares in constant time.
func (s *CSRFStore) Validate(sessionKey, token string) error {
	if token == "" {
		return ErrCSRFTokenMissing
	}

	s.mu.Lock()
	entry, ok := s.tokens[sessionKey]
	if ok && s.now().After(entry.expiresAt) {
		delete(s.tokens, sessionKey)
		s.mu.Unlock()
		return ErrCSRFTokenExpired
	}
	s.mu.Unlock()

	if !ok {
		return ErrCSRFTokenMissing
	}

	if subtle.ConstantTimeCompare([]byte(entry.token), []byte(token)) != 1 {
		return ErrCSRFTokenInvalid
	}
	return nil
}

// Revoke drops the session's token, typically on logout.
func (s *CSRFStore) Revoke(sessionKey string) {
	s.mu.Lock()
	delete(s.tokens, sessionKey)
	s.mu.Unlock()
}

// Sweep removes all expired entries and reports how many were dropped.
func (s *CSRFStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.tokens {
		if now.After(entry.expiresAt) {
			delete(s.tokens, key)
			removed++
		}
	}
	return removed
}

func (s *CSRFStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}
