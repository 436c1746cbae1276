package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"clinical-dictation-service/internal/recognizer"
)

// ErrNotFound is returned when a session ID is not registered.
var ErrNotFound = errors.New("session not found")

// Registry is the process-boundary map of live sessions by ID. Safe
// for concurrent start/stop of independent sessions; one session's
// failure never affects another's entry.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	provider recognizer.Provider
}

// NewRegistry creates a registry starting sessions on the given
// provider.
func NewRegistry(provider recognizer.Provider) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		provider: provider,
	}
}

// Start creates, registers and starts a session. A duplicate live
// session ID is rejected.
func (r *Registry) Start(ctx context.Context, cfg Config, cb Callbacks) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg.SessionID != "" {
		if existing, ok := r.sessions[cfg.SessionID]; ok && !existing.State().IsTerminal() {
			return nil, fmt.Errorf("session %s already active", cfg.SessionID)
		}
	}
	s := Start(ctx, r.provider, cfg, cb)
	r.sessions[s.ID()] = s
	return s, nil
}

// Get returns a registered session.
func (r *Registry) Get(sessionID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Stop tears down a session and removes its entry.
func (r *Registry) Stop(sessionID string) error {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Stop()
	return nil
}

// ActiveCount returns the number of non-terminal sessions.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.sessions {
		if !s.State().IsTerminal() {
			n++
		}
	}
	return n
}

// StopAll tears down every registered session.
func (r *Registry) StopAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		sessions = append(sessions, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	for _, s := range sessions {
		s.Stop()
	}
}
