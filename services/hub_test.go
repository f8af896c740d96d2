package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRegisterLookup(t *testing.T) {
	hub := NewHub()

	c := &Client{userID: "alice"}
	hub.Register("alice", c)

	got, ok := hub.Lookup("alice")
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.True(t, hub.IsConnected("alice"))
	assert.Equal(t, 1, hub.Count())

	_, ok = hub.Lookup("bob")
	assert.False(t, ok)
	assert.False(t, hub.IsConnected("bob"))
}

func TestHubReregisterReplaces(t *testing.T) {
	hub := NewHub()

	old := &Client{userID: "alice"}
	assert.Nil(t, hub.Register("alice", old))

	fresh := &Client{userID: "alice"}
	assert.Same(t, old, hub.Register("alice", fresh))
	assert.Nil(t, hub.Register("alice", fresh), "re-registering the same client displaces nobody")

	got, ok := hub.Lookup("alice")
	require.True(t, ok)
	assert.Same(t, fresh, got)
	assert.Equal(t, 1, hub.Count())

	// the replaced connection's unregister must not evict the fresh one
	userID, removed := hub.Unregister(old)
	assert.False(t, removed)
	assert.Empty(t, userID)
	assert.True(t, hub.IsConnected("alice"))
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()

	c := &Client{userID: "alice"}
	hub.Register("alice", c)

	userID, removed := hub.Unregister(c)
	require.True(t, removed)
	assert.Equal(t, "alice", userID)
	assert.False(t, hub.IsConnected("alice"))

	// idempotent
	_, removed = hub.Unregister(c)
	assert.False(t, removed)
}

func TestHubUnregisterAnonymous(t *testing.T) {
	hub := NewHub()

	_, removed := hub.Unregister(&Client{})
	assert.False(t, removed)
}
