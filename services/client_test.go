package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rpsarena/rps-backend/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConn records events delivered to an opponent.
type stubConn struct {
	mu     sync.Mutex
	events []game.Event
}

func (s *stubConn) Send(ev game.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *stubConn) ofType(typ string) []game.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []game.Event
	for _, ev := range s.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// stubDirectory resolves every ID so identify always succeeds.
type stubDirectory struct{}

func (stubDirectory) FindUser(_ context.Context, id string) (*game.UserInfo, error) {
	return &game.UserInfo{ID: id, Handle: "@" + id, Rating: 1000}, nil
}

func (stubDirectory) UpdateUser(context.Context, string, game.UserUpdate) error {
	return nil
}

// newTestMatchmaker pins matches in counting so nothing resolves mid-test.
func newTestMatchmaker() *game.Matchmaker {
	cfg := game.Config{CountdownTicks: 10, TickInterval: time.Hour}
	return game.NewMatchmaker(cfg, game.NewResultCommitter(stubDirectory{}), nil)
}

func drainEvents(t *testing.T, c *Client) []game.Event {
	t.Helper()
	var out []game.Event
	for {
		select {
		case raw := <-c.send:
			var ev game.Event
			require.NoError(t, json.Unmarshal(raw, &ev))
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestClientSendQueues(t *testing.T) {
	c := &Client{send: make(chan []byte, 2)}

	require.NoError(t, c.Send(game.Event{Type: game.EventWaiting}))

	var ev game.Event
	require.NoError(t, json.Unmarshal(<-c.send, &ev))
	assert.Equal(t, game.EventWaiting, ev.Type)
}

func TestClientSendFullBufferDrops(t *testing.T) {
	c := &Client{send: make(chan []byte, 1)}

	require.NoError(t, c.Send(game.Event{Type: game.EventWaiting}))
	// buffer full: dropped, not an error and not blocking
	require.NoError(t, c.Send(game.Event{Type: game.EventCountdown}))
	assert.Len(t, c.send, 1)
}

func TestClientSendAfterClose(t *testing.T) {
	c := &Client{send: make(chan []byte, 1)}
	c.closed.Store(true)

	err := c.Send(game.Event{Type: game.EventWaiting})
	assert.ErrorIs(t, err, errClientClosed)
}

func TestActionsBeforeIdentifyRejected(t *testing.T) {
	mm := newTestMatchmaker()
	for _, action := range []string{"join_random", "create_custom", "join_custom", "submit_choice", "leave"} {
		c := &Client{hub: NewHub(), mm: mm, users: stubDirectory{}, send: make(chan []byte, 4)}
		c.handleMessage([]byte(`{"action":"` + action + `"}`))

		events := drainEvents(t, c)
		require.Len(t, events, 1, "action %q before identify", action)
		assert.Equal(t, game.EventError, events[0].Type)
	}

	live, waiting, lobbies := mm.Stats()
	assert.Equal(t, 0, live)
	assert.Equal(t, 0, waiting)
	assert.Equal(t, 0, lobbies)
}

func TestReidentifyFromNewConnectionEndsOldSession(t *testing.T) {
	hub := NewHub()
	mm := newTestMatchmaker()

	old := &Client{hub: hub, mm: mm, users: stubDirectory{}, send: make(chan []byte, 32), userID: "alice", handle: "@alice"}
	hub.Register("alice", old)

	bobConn := &stubConn{}
	require.NoError(t, mm.JoinRandom(game.NewPlayer("alice", "@alice", old)))
	require.NoError(t, mm.JoinRandom(game.NewPlayer("bob", "@bob", bobConn)))
	live, _, _ := mm.Stats()
	require.Equal(t, 1, live)

	// same user identifies from a fresh connection while the old one is open
	fresh := &Client{hub: hub, mm: mm, users: stubDirectory{}, send: make(chan []byte, 32)}
	fresh.identify("alice")

	got, ok := hub.Lookup("alice")
	require.True(t, ok)
	assert.Same(t, fresh, got)

	// the old session's match is gone and the opponent was told
	live, _, _ = mm.Stats()
	assert.Equal(t, 0, live)
	assert.Len(t, bobConn.ofType(game.EventOpponentLeft), 1)

	// the fresh session starts clean: joining again works
	require.NoError(t, mm.JoinRandom(fresh.player()))

	// the old connection's pump exit finds nothing left to tear down
	_, removed := hub.Unregister(old)
	assert.False(t, removed)
}

func TestReidentifyAsDifferentUser(t *testing.T) {
	hub := NewHub()
	mm := newTestMatchmaker()

	c := &Client{hub: hub, mm: mm, users: stubDirectory{}, send: make(chan []byte, 32), userID: "alice", handle: "@alice"}
	hub.Register("alice", c)
	require.NoError(t, mm.JoinRandom(game.NewPlayer("alice", "@alice", c)))

	c.identify("carol")

	assert.False(t, hub.IsConnected("alice"))
	got, ok := hub.Lookup("carol")
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.Equal(t, "carol", c.UserID())

	// alice's waiting-pool entry went with her identity
	_, waiting, _ := mm.Stats()
	assert.Equal(t, 0, waiting)
}

func TestIdentifySameUserAgainIsHarmless(t *testing.T) {
	hub := NewHub()
	mm := newTestMatchmaker()

	c := &Client{hub: hub, mm: mm, users: stubDirectory{}, send: make(chan []byte, 32)}
	c.identify("alice")
	require.NoError(t, mm.JoinRandom(c.player()))

	c.identify("alice")

	// still waiting: re-identifying on the same connection tears nothing down
	_, waiting, _ := mm.Stats()
	assert.Equal(t, 1, waiting)
	assert.True(t, hub.IsConnected("alice"))
}
