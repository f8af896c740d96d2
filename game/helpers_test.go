package game_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rpsarena/rps-backend/game"
	"github.com/stretchr/testify/require"
)

// fakeConn records every event the engine sends to one player.
type fakeConn struct {
	mu     sync.Mutex
	events []game.Event
}

func (f *fakeConn) Send(ev game.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeConn) ofType(typ string) []game.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []game.Event
	for _, ev := range f.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// waitFor blocks until at least n events of the given type arrived.
func (f *fakeConn) waitFor(t *testing.T, typ string, n int) []game.Event {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(f.ofType(typ)) >= n
	}, 2*time.Second, time.Millisecond, "waiting for %d %s events", n, typ)
	return f.ofType(typ)
}

// fakeDirectory is an in-memory user collaborator recording every update.
// Setting failUpdates makes every UpdateUser call fail without recording.
type fakeDirectory struct {
	mu          sync.Mutex
	updates     map[string][]game.UserUpdate
	failUpdates error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{updates: make(map[string][]game.UserUpdate)}
}

func (d *fakeDirectory) FindUser(_ context.Context, id string) (*game.UserInfo, error) {
	return &game.UserInfo{ID: id, Handle: "@" + id, Rating: 1000}, nil
}

func (d *fakeDirectory) UpdateUser(_ context.Context, id string, upd game.UserUpdate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failUpdates != nil {
		return d.failUpdates
	}
	d.updates[id] = append(d.updates[id], upd)
	return nil
}

func (d *fakeDirectory) updatesFor(id string) []game.UserUpdate {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]game.UserUpdate(nil), d.updates[id]...)
}

// fakeArchive records archived matches. Setting fail makes every call fail.
type fakeArchive struct {
	mu   sync.Mutex
	recs []game.ArchivedMatch
	fail error
}

func (a *fakeArchive) ArchiveMatch(_ context.Context, rec game.ArchivedMatch) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail != nil {
		return a.fail
	}
	a.recs = append(a.recs, rec)
	return nil
}

func (a *fakeArchive) records() []game.ArchivedMatch {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]game.ArchivedMatch(nil), a.recs...)
}

type testEnv struct {
	mm      *game.Matchmaker
	dir     *fakeDirectory
	archive *fakeArchive
}

// newTestEnv builds a matchmaker with millisecond countdown ticks so matches
// reach playing almost immediately.
func newTestEnv() *testEnv {
	return newTestEnvWithConfig(game.Config{CountdownTicks: 10, TickInterval: time.Millisecond})
}

// newStalledEnv uses an interval so long the countdown never fires, pinning
// matches in the counting state.
func newStalledEnv() *testEnv {
	return newTestEnvWithConfig(game.Config{CountdownTicks: 10, TickInterval: time.Hour})
}

func newTestEnvWithConfig(cfg game.Config) *testEnv {
	dir := newFakeDirectory()
	archive := &fakeArchive{}
	return &testEnv{
		mm:      game.NewMatchmaker(cfg, game.NewResultCommitter(dir), archive),
		dir:     dir,
		archive: archive,
	}
}

func newTestPlayer(id string) (*game.Player, *fakeConn) {
	conn := &fakeConn{}
	return game.NewPlayer(id, "@"+id, conn), conn
}

// waitForPlaying polls with a throwaway invalid submission turned valid: the
// first accepted choice proves the match left counting. It submits rock for
// the given user, so tests account for that pending choice.
func waitForPlaying(t *testing.T, mm *game.Matchmaker, userID string) {
	t.Helper()
	ctx := context.Background()
	require.Eventually(t, func() bool {
		return mm.SubmitChoice(ctx, userID, game.ChoiceRock) == nil
	}, 2*time.Second, time.Millisecond, "match never reached playing")
}
