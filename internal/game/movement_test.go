package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMover(x, y float64, facing Direction) *Mover {
	return &Mover{
		ID:     1,
		Box:    NewBox(x, y, 4, 4),
		Facing: facing,
		Sprite: FacingSprite(0, facing),
	}
}

func TestResolveMoveCapsAtClearance(t *testing.T) {
	m := newTestMover(0, 0, DirUp)
	obstacles := []Obstacle{{ID: 2, Kind: KindIron, Box: NewBox(0, 5, 4, 4)}}

	out := ResolveMove(m, obstacles, DirUp, 2, time.Millisecond, nil, 8)
	assert.True(t, out.Moved)
	assert.InDelta(t, 1.0, out.Distance, 1e-9)
	assert.InDelta(t, 1.0, m.Box.Center.Y, 1e-9)
	assert.Equal(t, EntityID(2), out.Blocker)

	// Now flush against the obstacle.
	out = ResolveMove(m, obstacles, DirUp, 2, time.Millisecond, nil, 8)
	assert.True(t, out.Blocked)
	assert.False(t, out.Moved)
	assert.InDelta(t, 1.0, m.Box.Center.Y, 1e-9)
}

func TestResolveMoveObstacleFreeMovesFullSpeed(t *testing.T) {
	for _, d := range Directions {
		t.Run(d.String(), func(t *testing.T) {
			m := newTestMover(10, 10, d)
			for range 5 {
				out := ResolveMove(m, nil, d, 3, time.Millisecond, nil, 8)
				require.True(t, out.Moved)
				assert.InDelta(t, 3.0, out.Distance, 1e-9)
			}
			u := d.Unit()
			assert.InDelta(t, 10+15*u.X, m.Box.Center.X, 1e-9)
			assert.InDelta(t, 10+15*u.Y, m.Box.Center.Y, 1e-9)
		})
	}
}

func TestResolveMoveNeverExceedsMinClearance(t *testing.T) {
	obstacles := []Obstacle{
		{ID: 2, Kind: KindBrick, Box: NewBox(0, 9, 4, 4)},
		{ID: 3, Kind: KindBrick, Box: NewBox(1, 6, 4, 4)},
		{ID: 4, Kind: KindBrick, Box: NewBox(30, 3, 4, 4)}, // Out of the lane
	}
	for _, speed := range []float64{0.5, 1, 2, 4, 8} {
		m := newTestMover(0, 0, DirUp)
		out := ResolveMove(m, obstacles, DirUp, speed, time.Millisecond, nil, 8)
		assert.LessOrEqual(t, out.Distance, min(speed, 2.0), "speed %v", speed)
	}
}

func TestResolveMoveTurnSnapsToLane(t *testing.T) {
	m := newTestMover(13, 13, DirUp)

	out := ResolveMove(m, nil, DirRight, 4, time.Millisecond, nil, 8)
	assert.True(t, out.Turned)
	assert.True(t, out.Snapped)
	assert.False(t, out.Moved)
	assert.Equal(t, DirRight, m.Facing)
	assert.Equal(t, FacingSprite(0, DirRight), m.Sprite)
	assert.InDelta(t, 16.0, m.Box.Center.Y, 1e-9)
	assert.InDelta(t, 13.0, m.Box.Center.X, 1e-9, "no translation on a turn tick")
}

func TestResolveMoveTurnSnapIdempotent(t *testing.T) {
	wall := []Obstacle{{ID: 2, Kind: KindIron, Box: NewBox(17, 13, 2, 40)}}
	m := newTestMover(13, 13, DirUp)

	ResolveMove(m, wall, DirRight, 4, time.Millisecond, nil, 8)
	snapped := m.Box.Center.Y
	for range 4 {
		out := ResolveMove(m, wall, DirRight, 4, time.Millisecond, nil, 8)
		assert.False(t, out.Turned)
		assert.Equal(t, snapped, m.Box.Center.Y)
	}
}

func TestResolveMoveReversalKeepsLane(t *testing.T) {
	m := newTestMover(13, 13, DirUp)

	out := ResolveMove(m, nil, DirDown, 4, time.Millisecond, nil, 8)
	assert.True(t, out.Turned)
	assert.False(t, out.Snapped)
	assert.InDelta(t, 13.0, m.Box.Center.X, 1e-9)
	assert.InDelta(t, 13.0, m.Box.Center.Y, 1e-9)
}

func TestResolveMoveExemptKinds(t *testing.T) {
	obstacles := []Obstacle{{ID: 2, Kind: KindGrass, Box: NewBox(0, 3, 4, 4)}}

	m := newTestMover(0, 0, DirUp)
	out := ResolveMove(m, obstacles, DirUp, 2, time.Millisecond, ExemptKinds(Kinds(KindGrass)), 8)
	assert.True(t, out.Moved)
	assert.InDelta(t, 2.0, out.Distance, 1e-9)

	m = newTestMover(0, 0, DirUp)
	out = ResolveMove(m, obstacles, DirUp, 2, time.Millisecond, nil, 8)
	assert.True(t, out.Blocked)
}

func TestResolveMoveSkipsSelfAndNonCollidable(t *testing.T) {
	obstacles := []Obstacle{
		{ID: 1, Kind: KindTank, Box: NewBox(0, 0, 4, 4)},
		{ID: 5, Kind: KindStar, Box: NewBox(0, 3, 4, 4)},
	}
	m := newTestMover(0, 0, DirUp)
	out := ResolveMove(m, obstacles, DirUp, 2, time.Millisecond, nil, 8)
	assert.True(t, out.Moved)
	assert.False(t, out.Blocked)
}

func TestResolveMoveGatedByTimer(t *testing.T) {
	m := newTestMover(0, 0, DirUp)
	m.MoveTimer = NewTimer(10*time.Millisecond, true)

	out := ResolveMove(m, nil, DirUp, 4, 6*time.Millisecond, nil, 8)
	assert.False(t, out.Moved)
	out = ResolveMove(m, nil, DirUp, 4, 6*time.Millisecond, nil, 8)
	assert.True(t, out.Moved)
	assert.InDelta(t, 4.0, m.Box.Center.Y, 1e-9)
}

func TestResolveMoveAnimates(t *testing.T) {
	m := newTestMover(0, 0, DirLeft)
	m.AnimTimer = NewTimer(100*time.Millisecond, true)
	base := m.Sprite

	ResolveMove(m, nil, DirLeft, 1, 100*time.Millisecond, nil, 8)
	assert.Equal(t, base|1, m.Sprite)
	ResolveMove(m, nil, DirLeft, 1, 100*time.Millisecond, nil, 8)
	assert.Equal(t, base, m.Sprite)
}

func TestSnapLane(t *testing.T) {
	assert.Equal(t, 16.0, SnapLane(13, 8))
	assert.Equal(t, 8.0, SnapLane(11.9, 8))
	assert.Equal(t, 11.9, SnapLane(11.9, 0))
}

func TestTimer(t *testing.T) {
	tm := NewTimer(10*time.Millisecond, true)
	assert.False(t, tm.Tick(4*time.Millisecond))
	assert.False(t, tm.Tick(4*time.Millisecond))
	assert.True(t, tm.Tick(4*time.Millisecond))
	assert.Equal(t, 8*time.Millisecond, tm.Remaining())

	once := NewTimer(10*time.Millisecond, false)
	assert.True(t, once.Tick(15*time.Millisecond))
	assert.True(t, once.Finished())
	assert.False(t, once.Tick(15*time.Millisecond))
	once.Reset()
	assert.False(t, once.Finished())
}
