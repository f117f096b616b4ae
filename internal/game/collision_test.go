package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearanceUpWithFullOverlap(t *testing.T) {
	mover := NewBox(0, 0, 4, 4)
	obstacle := NewBox(0, 5, 4, 4)

	dist, ok := Clearance(mover, obstacle, DirUp)
	require.True(t, ok)
	assert.InDelta(t, 1.0, dist, 1e-9)
}

func TestClearanceEachDirection(t *testing.T) {
	mover := NewBox(0, 0, 4, 4)
	cases := []struct {
		dir      Direction
		obstacle Box
		want     float64
	}{
		{DirUp, NewBox(0, 10, 4, 4), 6},
		{DirDown, NewBox(1, -10, 4, 4), 6},
		{DirRight, NewBox(7, -1, 2, 2), 4},
		{DirLeft, NewBox(-7, 0, 2, 8), 4},
	}
	for _, tc := range cases {
		t.Run(tc.dir.String(), func(t *testing.T) {
			dist, ok := Clearance(mover, tc.obstacle, tc.dir)
			require.True(t, ok)
			assert.InDelta(t, tc.want, dist, 1e-9)
		})
	}
}

func TestClearancePerpendicularIndependence(t *testing.T) {
	mover := NewBox(0, 0, 4, 4)
	for _, y := range []float64{-50, -3, 0, 3, 50} {
		// Edges touch at x=2: no perpendicular overlap.
		_, ok := Clearance(mover, NewBox(4, y, 4, 4), DirUp)
		assert.False(t, ok, "touching column at y=%v", y)
		_, ok = Clearance(mover, NewBox(30, y, 4, 4), DirDown)
		assert.False(t, ok, "far column at y=%v", y)
	}
}

func TestClearanceMonotonic(t *testing.T) {
	obstacle := NewBox(0, 20, 4, 4)
	prev := 1e9
	for y := 0.0; y <= 17; y += 0.5 {
		dist, ok := Clearance(NewBox(0, y, 4, 4), obstacle, DirUp)
		require.True(t, ok, "y=%v", y)
		assert.Less(t, dist, prev)
		prev = dist
	}
	dist, _ := Clearance(NewBox(0, 16, 4, 4), obstacle, DirUp)
	assert.InDelta(t, 0.0, dist, 1e-9, "contact")
	dist, _ = Clearance(NewBox(0, 17, 4, 4), obstacle, DirUp)
	assert.Negative(t, dist, "overlap")
}

func TestClearanceIgnoresObstaclesBehind(t *testing.T) {
	mover := NewBox(0, 0, 4, 4)
	_, ok := Clearance(mover, NewBox(0, -10, 4, 4), DirUp)
	assert.False(t, ok)

	// Overlapping, but the obstacle's center is behind the leading edge, so
	// the mover may back out of it.
	_, ok = Clearance(mover, NewBox(0, -3, 4, 4), DirUp)
	assert.False(t, ok)
	dist, ok := Clearance(mover, NewBox(0, -3, 4, 4), DirDown)
	require.True(t, ok)
	assert.Negative(t, dist)
}

func TestIntersectsTouchingEdges(t *testing.T) {
	a := NewBox(0, 0, 4, 4)
	assert.False(t, Intersects(a, NewBox(4, 0, 4, 4)))
	assert.True(t, Intersects(a, NewBox(3.9, 0, 4, 4)))
	assert.True(t, Intersects(a, NewBox(0, 0, 1, 1)))
}

func TestOverlapSide(t *testing.T) {
	b := NewBox(0, 0, 32, 32)

	side, ok := Overlap(NewBox(-20, 0, 16, 16), b)
	require.True(t, ok)
	assert.Equal(t, SideLeft, side)

	side, ok = Overlap(NewBox(0, 20, 16, 16), b)
	require.True(t, ok)
	assert.Equal(t, SideTop, side)

	side, ok = Overlap(NewBox(2, -22, 16, 16), b)
	require.True(t, ok)
	assert.Equal(t, SideBottom, side)

	_, ok = Overlap(NewBox(40, 0, 16, 16), b)
	assert.False(t, ok)
}

func TestContact(t *testing.T) {
	bullet := NewBox(0, 0, 8, 8)
	assert.True(t, Contact(bullet, NewBox(0, 12, 16, 16), DirUp), "flush ahead")
	assert.False(t, Contact(bullet, NewBox(0, 13, 16, 16), DirUp), "gap ahead")
	assert.True(t, Contact(bullet, NewBox(0, -6, 16, 16), DirUp), "overlap behind")
	assert.False(t, Contact(bullet, NewBox(12, 0, 16, 16), DirUp), "flush beside")
}
