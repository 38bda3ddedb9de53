package store

import (
	"log/slog"
	"sync"

	"github.com/PigStep/Vibe-BPMN-studio/internal/models"
)

// InMemoryStore is a mutex-guarded map implementation of Store. Safe for
// concurrent use; each operation touches exactly one session.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.SessionState
}

// NewInMemoryStore creates an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	slog.Debug("store.NewInMemoryStore: creating in-memory session store")
	return &InMemoryStore{sessions: make(map[string]models.SessionState)}
}

// GetSession returns a copy of the stored state, or nil if the session is unknown.
func (s *InMemoryStore) GetSession(sessionID string) (*models.SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	// Copy out so callers cannot mutate the stored state in place.
	cp := state
	return &cp, nil
}

// SaveSession stores a copy of the state keyed by its session id.
func (s *InMemoryStore) SaveSession(state models.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[state.SessionID] = state
	slog.Debug("store.SaveSession: session saved", "sessionID", state.SessionID, "stage", state.Stage)
	return nil
}

// DeleteSession removes the state for a session id.
func (s *InMemoryStore) DeleteSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	slog.Debug("store.DeleteSession: session removed", "sessionID", sessionID)
	return nil
}

// Reset removes all sessions.
func (s *InMemoryStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]models.SessionState)
	slog.Debug("store.Reset: all sessions removed")
	return nil
}
