package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionRegistry(t *testing.T) {
	registry := NewConnectionRegistry()

	registry.Add("conn-1", "alice")
	registry.Add("conn-2", "alice")
	registry.Add("conn-3", "bob")

	username, ok := registry.Lookup("conn-1")
	assert.True(t, ok, "expected conn-1 to be registered")
	assert.Equal(t, "alice", username)

	username, ok = registry.Lookup("conn-3")
	assert.True(t, ok, "expected conn-3 to be registered")
	assert.Equal(t, "bob", username)

	assert.Equal(t, 3, registry.Len(), "expected three registered connections")

	registry.Remove("conn-1")
	_, ok = registry.Lookup("conn-1")
	assert.False(t, ok, "expected conn-1 to be removed")
	assert.Equal(t, 2, registry.Len())

	// removing an unknown id is a no-op
	registry.Remove("conn-unknown")
	assert.Equal(t, 2, registry.Len())
}
