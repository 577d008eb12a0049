package session

import "sync"

// Store exposes session state for the workflow engine. The store only
// guards its own map; callers must serialize access per user.
type Store interface {
	Get(userID string) (Session, bool)
	Put(s Session)
	Delete(userID string)
}

// MemoryStore implements Store with a process-lifetime map. There is no
// eviction: a user who never sends the second image keeps an entry until
// the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Get looks up a session by user identifier.
func (s *MemoryStore) Get(userID string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

// Put stores a session keyed by its user identifier.
func (s *MemoryStore) Put(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = sess
}

// Delete removes a session; deleting an absent user is a no-op.
func (s *MemoryStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
