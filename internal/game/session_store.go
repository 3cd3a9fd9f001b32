package game

import "sync"

// SessionStore maps a caller-chosen session id to its owned GameSession.
// It is constructed once at process start and passed by reference to every
// handler; there is no package-level registry.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*GameSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*GameSession),
	}
}

// Add registers a session under id. Returns false if the id is taken.
func (s *SessionStore) Add(id string, g *GameSession) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[id]; exists {
		return false
	}
	s.sessions[id] = g
	return true
}

func (s *SessionStore) Get(id string) (*GameSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, exists := s.sessions[id]
	return g, exists
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// IDs returns a snapshot of the registered session ids.
func (s *SessionStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}
