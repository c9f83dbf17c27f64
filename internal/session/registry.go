package session

import "sync"

// Registry holds the live sessions of all connected players. Sessions are
// in-memory only; abandoning one is simply dropping its key. The mutex guards
// the map, not the sessions: each session belongs to exactly one player whose
// commands arrive serially.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session under key, or nil when none is running.
func (r *Registry) Get(key string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[key]
}

// GetOrStart returns the session under key, starting a fresh one with start
// when none is running yet.
func (r *Registry) GetOrStart(key string, start func() *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[key]; ok {
		return s
	}
	s := start()
	r.sessions[key] = s
	return s
}

// Drop discards the session under key. Used for retrying a case.
func (r *Registry) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key)
}
