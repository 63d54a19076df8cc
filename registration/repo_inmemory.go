package registration

import (
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/ecolink/internal/errors"
)

// InMemoryRepo is an in-memory implementation of Repo
type InMemoryRepo struct {
	mu        sync.RWMutex
	workflows map[string]*Workflow
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		workflows: make(map[string]*Workflow),
	}
}

func (r *InMemoryRepo) Upsert(sessionID string, w *Workflow) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if w == nil {
		return fmt.Errorf("workflow is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.workflows[sessionID] = w
	return nil
}

func (r *InMemoryRepo) Get(sessionID string) (*Workflow, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workflows[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return w, nil
}

func (r *InMemoryRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.workflows, sessionID)
	return nil
}
