package inmemory

import (
	"context"
	"sync"

	"github.com/sufield/todoapi/internal/domain"
	"github.com/sufield/todoapi/internal/ports"
)

// SessionStore is an in-memory ports.SessionStore. Development mode seeds it
// from configuration; tests seed it directly.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]ports.Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]ports.Session)}
}

// Put registers or replaces a session token.
func (s *SessionStore) Put(token string, sess ports.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = sess
}

func (s *SessionStore) LookupSession(_ context.Context, token string) (ports.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]
	if !ok {
		return ports.Session{}, domain.ErrUnauthenticated
	}
	return sess, nil
}
