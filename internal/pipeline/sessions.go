package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/rescalc/internal/search"
)

type session struct {
	cache    *search.ResultCache
	lastUsed time.Time
}

// SessionStore owns one ResultCache per client session, evicted after ttl
// without use.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Cache returns the session's cache, creating the session on first use. An
// empty id gets a fresh cache that is not retained.
func (s *SessionStore) Cache(id string) *search.ResultCache {
	if id == "" {
		return search.NewResultCache()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{cache: search.NewResultCache()}
		s.sessions[id] = sess
	}
	sess.lastUsed = s.now()
	return sess.cache
}

// Cleanup removes sessions idle for longer than the TTL.
func (s *SessionStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
