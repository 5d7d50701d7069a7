package server

import (
	"slices"
	"sync"
)

// PresenceTracker is the authoritative map of username to live connection
// ids. A username is present exactly while it has at least one open
// connection. Mutations are serialized by a single mutex; operations are O(1)
// relative to message volume so contention is not a concern.
type PresenceTracker struct {
	mu    sync.Mutex
	conns map[string][]string
}

func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{
		conns: make(map[string][]string),
	}
}

// Connect records a connection for the user and reports whether it is the
// user's first, i.e. the user just transitioned online.
func (t *PresenceTracker) Connect(username, connectionId string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing := t.conns[username]
	t.conns[username] = append(existing, connectionId)

	return len(existing) == 0
}

// Disconnect removes a connection for the user and reports whether it was the
// user's last, i.e. the user just transitioned offline.
func (t *PresenceTracker) Disconnect(username, connectionId string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing := t.conns[username]
	idx := slices.Index(existing, connectionId)
	if idx < 0 {
		return false
	}

	existing = slices.Delete(existing, idx, idx+1)
	if len(existing) == 0 {
		delete(t.conns, username)
		return true
	}

	t.conns[username] = existing
	return false
}

// GetConnections returns the user's live connection ids in connect order, or
// an empty slice if the user is offline. The result is a copy.
func (t *PresenceTracker) GetConnections(username string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return slices.Clone(t.conns[username])
}

// OnlineUsers returns the usernames with at least one open connection,
// sorted.
func (t *PresenceTracker) OnlineUsers() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	users := make([]string, 0, len(t.conns))
	for username := range t.conns {
		users = append(users, username)
	}
	slices.Sort(users)

	return users
}
