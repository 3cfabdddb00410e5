// Package session implements the bounded per-session context store: recency
// buffers for resolved fields, the last confirmed mission, pending state, and
// the last execution artifact.
//
// The store is the only shared mutable state in the gate. Mutation happens
// through narrow per-session mutators; readiness evaluation sees the context
// only through the read-only types.ContextView interface.
package session

import (
	"sync"

	"missiongate/internal/logging"
)

// Store is a thread-safe map of session id to context with lazy creation.
// Locking is per session; there is no global lock on the hot path beyond the
// map itself, so distinct sessions proceed concurrently.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Context
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Context)}
}

// GetOrCreate returns the context for a session id, creating it on first use.
func (s *Store) GetOrCreate(sessionID string) *Context {
	s.mu.RLock()
	if c, ok := s.sessions[sessionID]; ok {
		s.mu.RUnlock()
		return c
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.sessions[sessionID]; ok {
		return c
	}

	c := newContext(sessionID)
	s.sessions[sessionID] = c
	logging.Get(logging.CategorySession).Debug("session created: %s", sessionID)
	return c
}

// Remove drops a session's context, e.g. on session expiry.
func (s *Store) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
