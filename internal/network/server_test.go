package network

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amalg/go-battlecity/internal/game"
)

func startServer(t *testing.T) *Server {
	t.Helper()
	g, err := game.NewEngine(game.DefaultConfig())
	require.NoError(t, err)
	s := NewServer("127.0.0.1:0", g, nil)
	require.NoError(t, s.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-served:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return s
}

// nextState waits for a snapshot matching ok.
func nextState(t *testing.T, states <-chan game.Snapshot, ok func(game.Snapshot) bool) game.Snapshot {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case s, open := <-states:
			require.True(t, open, "state channel closed")
			if ok(s) {
				return s
			}
		case <-deadline:
			t.Fatal("no matching state")
		}
	}
}

func TestServerSeatsTwoPlayers(t *testing.T) {
	s := startServer(t)
	addr := s.Addr().String()

	alice, err := NewClient(addr, "Alice")
	require.NoError(t, err)
	defer alice.Close()
	bob, err := NewClient(addr, "Bob")
	require.NoError(t, err)
	defer bob.Close()

	assert.Equal(t, game.OwnerP1, alice.Owner())
	assert.Equal(t, game.OwnerP2, bob.Owner())
	assert.NotEqual(t, alice.PlayerID(), bob.PlayerID())
	assert.Equal(t, game.DefaultConfig().MinCell, alice.Config().MinCell)

	_, err = NewClient(addr, "Carol")
	assert.ErrorContains(t, err, "full")

	snap := nextState(t, bob.StateChan(), func(s game.Snapshot) bool { return len(s.Players) == 2 })
	assert.Equal(t, game.StatusLobby, snap.Status)
}

func TestServerStartAndIntent(t *testing.T) {
	s := startServer(t)
	c, err := NewClient(s.Addr().String(), "Alice")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.SendStart())
	nextState(t, c.StateChan(), func(s game.Snapshot) bool { return s.Status == game.StatusRunning })

	// Starting twice is refused with an error frame.
	require.NoError(t, c.SendStart())
	select {
	case msg := <-c.Errors():
		assert.Contains(t, msg, "in progress")
	case <-time.After(5 * time.Second):
		t.Fatal("no error for second start")
	}

	// The tank appears after its spawn animation and then drives.
	var start game.Box
	nextState(t, c.StateChan(), func(s game.Snapshot) bool {
		for _, e := range s.Entities {
			if e.Kind == game.KindTank && e.Owner == game.OwnerP1 {
				start = e.Box
				return true
			}
		}
		return false
	})
	require.NoError(t, c.SendIntent(game.ActionMove, game.DirUp))
	nextState(t, c.StateChan(), func(s game.Snapshot) bool {
		for _, e := range s.Entities {
			if e.Kind == game.KindTank && e.Owner == game.OwnerP1 {
				return e.Box.Center.Y > start.Center.Y
			}
		}
		return false
	})
}

func TestClientDisconnectFreesSeat(t *testing.T) {
	s := startServer(t)
	addr := s.Addr().String()

	alice, err := NewClient(addr, "Alice")
	require.NoError(t, err)
	bob, err := NewClient(addr, "Bob")
	require.NoError(t, err)
	defer bob.Close()

	alice.Close()
	nextState(t, bob.StateChan(), func(s game.Snapshot) bool { return len(s.Players) == 1 })

	carol, err := NewClient(addr, "Carol")
	require.NoError(t, err)
	defer carol.Close()
	assert.Equal(t, game.OwnerP1, carol.Owner())
}

func TestLocalSession(t *testing.T) {
	g, err := game.NewEngine(game.DefaultConfig())
	require.NoError(t, err)
	l, err := NewLocal(g, "Solo")
	require.NoError(t, err)
	defer l.Close()

	assert.NotEmpty(t, l.PlayerID())
	require.NoError(t, l.SendStart())
	assert.ErrorIs(t, l.SendStart(), game.ErrGameRunning)
	snap := nextState(t, l.StateChan(), func(s game.Snapshot) bool { return s.Status == game.StatusRunning })
	require.Len(t, snap.Players, 1)
	assert.Equal(t, l.PlayerID(), snap.Players[0].ID)
	assert.NoError(t, l.SendIntent(game.ActionFire, 0))
}
