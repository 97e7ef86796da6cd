// Package session manages host engine sessions: each session owns one
// engine Environment built by an injected factory, so the evaluation bridge
// is registered per session. The store enforces global and per-user caps and
// evicts idle sessions after a TTL.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	domainerrors "github.com/clara-ai/clara-go/domain/errors"
	"github.com/clara-ai/clara-go/engine"
)

// EnvironmentFactory builds the Environment a new session owns, with all
// UDFs registered.
type EnvironmentFactory func() (*engine.Environment, error)

// Session is one user's engine instance plus bookkeeping.
type Session struct {
	CreatedAt  time.Time
	LastAccess time.Time
	Env        *engine.Environment
	ID         string
	UserID     string
}

// storeConfig holds configuration for the Store.
type storeConfig struct {
	maxConcurrent int
	maxPerUser    int
	ttl           time.Duration
	now           func() time.Time
}

func defaultStoreConfig() storeConfig {
	return storeConfig{
		maxConcurrent: 100,
		maxPerUser:    5,
		ttl:           30 * time.Minute,
		now:           time.Now,
	}
}

// StoreOption configures a Store.
type StoreOption func(*storeConfig)

// WithMaxConcurrent sets the global session cap. Default is 100.
func WithMaxConcurrent(n int) StoreOption {
	return func(c *storeConfig) {
		if n > 0 {
			c.maxConcurrent = n
		}
	}
}

// WithMaxPerUser sets the per-user session cap. Default is 5.
func WithMaxPerUser(n int) StoreOption {
	return func(c *storeConfig) {
		if n > 0 {
			c.maxPerUser = n
		}
	}
}

// WithTTL sets the idle TTL after which Sweep evicts a session. Default is
// 30 minutes.
func WithTTL(d time.Duration) StoreOption {
	return func(c *storeConfig) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithClock overrides the time source. This is useful for injecting fake
// clocks during testing.
func WithClock(now func() time.Time) StoreOption {
	return func(c *storeConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// Store is an in-memory session store. It is safe for concurrent use.
type Store struct {
	factory  EnvironmentFactory
	sessions map[string]*Session
	config   storeConfig
	mu       sync.RWMutex
}

// NewStore creates a Store that builds session environments with factory.
func NewStore(factory EnvironmentFactory, opts ...StoreOption) (*Store, error) {
	if factory == nil {
		return nil, fmt.Errorf("session: environment factory cannot be nil")
	}
	cfg := defaultStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{
		factory:  factory,
		sessions: make(map[string]*Session),
		config:   cfg,
	}, nil
}

// Create builds a new session for userID, enforcing the global and per-user
// caps before the environment is constructed.
func (s *Store) Create(userID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.config.maxConcurrent {
		return nil, &domainerrors.SessionLimitError{Limit: s.config.maxConcurrent, Scope: "global"}
	}
	owned := 0
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			owned++
		}
	}
	if owned >= s.config.maxPerUser {
		return nil, &domainerrors.SessionLimitError{Limit: s.config.maxPerUser, Scope: "user"}
	}

	env, err := s.factory()
	if err != nil {
		return nil, fmt.Errorf("session: environment factory failed: %w", err)
	}

	now := s.config.now()
	sess := &Session{
		ID:         newSessionID(),
		UserID:     userID,
		Env:        env,
		CreatedAt:  now,
		LastAccess: now,
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

// Get returns the session with the given ID and touches its last-access
// time. Expired sessions are evicted on access.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, &domainerrors.SessionNotFoundError{ID: id}
	}

	now := s.config.now()
	if now.Sub(sess.LastAccess) > s.config.ttl {
		delete(s.sessions, id)
		return nil, &domainerrors.SessionNotFoundError{ID: id}
	}
	sess.LastAccess = now
	return sess, nil
}

// Remove deletes the session with the given ID.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return &domainerrors.SessionNotFoundError{ID: id}
	}
	delete(s.sessions, id)
	return nil
}

// UserSessions returns the IDs of all sessions owned by userID.
func (s *Store) UserSessions(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts every session idle past the TTL and returns how many were
// removed. Call it periodically; the store does not run its own timer.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.config.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastAccess) > s.config.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// newSessionID returns a 128-bit random hex ID.
func newSessionID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("session: id generation failed: %v", err))
	}
	return hex.EncodeToString(buf[:])
}
