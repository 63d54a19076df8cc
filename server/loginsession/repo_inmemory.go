package loginsession

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/ecolink/internal/errors"
)

// InMemoryLoginSessionRepo is an in-memory implementation of Repo
type InMemoryLoginSessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewInMemoryLoginSessionRepo() *InMemoryLoginSessionRepo {
	return &InMemoryLoginSessionRepo{
		sessions: make(map[string]*Session),
	}
}

func (r *InMemoryLoginSessionRepo) Upsert(sessionID string, session *Session) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if session == nil {
		return fmt.Errorf("session is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = session
	return nil
}

func (r *InMemoryLoginSessionRepo) Get(sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "session %s", sessionID)
	}
	return session, nil
}

func (r *InMemoryLoginSessionRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

func (r *InMemoryLoginSessionRepo) Expire(cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []string
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, id)
			delete(r.sessions, id)
		}
	}
	return expired
}
