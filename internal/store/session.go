package store

import (
	"sync"
	"time"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/session"
)

// SessionStore is a thread-safe in-memory store for login sessions,
// keyed by session ID.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session.Session),
	}
}

// Add stores a session.
func (s *SessionStore) Add(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess
}

// Get retrieves a session by ID. It returns domain.ErrSessionNotFound
// if the session does not exist.
func (s *SessionStore) Get(id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes a session by ID. It returns domain.ErrSessionNotFound
// if the session does not exist.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// IdleSince returns the sessions whose last activity is before cutoff.
func (s *SessionStore) IdleSince(cutoff time.Time) []*session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var idle []*session.Session
	for _, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			idle = append(idle, sess)
		}
	}
	return idle
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
