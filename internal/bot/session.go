package bot

import "sync"

// SessionStore holds the single-slot per-chat state: the selected sender
// filter, or nothing. In-memory only; a restart forces users to pick their
// filter again.
type SessionStore struct {
	mu      sync.RWMutex
	filters map[int64]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{filters: make(map[int64]string)}
}

// Get returns the sender filter for chatID, if one has been selected.
func (s *SessionStore) Get(chatID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.filters[chatID]
	return f, ok
}

// Set stores filter for chatID, overwriting any prior value.
func (s *SessionStore) Set(chatID int64, filter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters[chatID] = filter
}

// Clear removes any selected filter for chatID.
func (s *SessionStore) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.filters, chatID)
}
