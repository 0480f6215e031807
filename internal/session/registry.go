package session

import (
	"errors"
	"sync"
)

var ErrSessionNotFound = errors.New("session not found")

// Registry holds the live controllers, keyed by session id. Sessions are
// in-memory only; a process restart discards them.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Controller
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Controller)}
}

// Add stores a controller under its session id.
func (r *Registry) Add(c *Controller) {
	r.mu.Lock()
	r.sessions[c.Session().ID] = c
	r.mu.Unlock()
}

// Get retrieves a controller by session id.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// Remove drops a controller from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
