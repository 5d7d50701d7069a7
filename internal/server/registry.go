package server

import (
	"sync"
)

// ConnectionRegistry maps a transport connection id to the username that owns
// it. It is in-memory only: live connections cannot survive a restart, so
// neither does the registry.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	conns map[string]string
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		conns: make(map[string]string),
	}
}

func (r *ConnectionRegistry) Add(connectionId, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connectionId] = username
}

func (r *ConnectionRegistry) Remove(connectionId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connectionId)
}

func (r *ConnectionRegistry) Lookup(connectionId string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	username, ok := r.conns[connectionId]
	return username, ok
}

func (r *ConnectionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
