package network

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/amalg/go-battlecity/internal/game"
)

// Local is an in-process session: the engine runs in this process and input
// goes straight onto its action queue.
type Local struct {
	engine   *game.Engine
	playerID string
	stateCh  chan game.Snapshot
	cancel   context.CancelFunc
}

// NewLocal seats name in engine and starts the game loop.
func NewLocal(engine *game.Engine, name string) (*Local, error) {
	id := uuid.NewString()
	if err := engine.AddPlayer(id, name); err != nil {
		return nil, fmt.Errorf("join local game: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Local{
		engine:   engine,
		playerID: id,
		stateCh:  make(chan game.Snapshot, 10),
		cancel:   cancel,
	}
	engine.OnTick(func(s game.Snapshot) { pushLatest(l.stateCh, s) })
	go engine.Run(ctx)
	return l, nil
}

// PlayerID returns the local player's ID.
func (l *Local) PlayerID() string {
	return l.playerID
}

// StateChan yields a snapshot after every tick.
func (l *Local) StateChan() <-chan game.Snapshot {
	return l.stateCh
}

// SendIntent queues one input event.
func (l *Local) SendIntent(actionType game.ActionType, dir game.Direction) error {
	l.engine.EnqueueAction(game.Action{PlayerID: l.playerID, Type: actionType, Dir: dir})
	return nil
}

// SendStart starts the game.
func (l *Local) SendStart() error {
	return l.engine.StartGame()
}

// Close stops the game loop.
func (l *Local) Close() {
	l.cancel()
	l.engine.Stop()
}
