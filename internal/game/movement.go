package game

import (
	"math"
	"time"
)

// Sprite offsets added to a tank's base sprite for each facing. The low bit
// is the animation frame.
var facingSprite = [4]int{
	DirUp:    0,
	DirLeft:  2,
	DirDown:  4,
	DirRight: 6,
}

// FacingSprite returns the sprite index for base facing d.
func FacingSprite(base int, d Direction) int {
	return base + facingSprite[d]
}

// Mover is the movement state of a steerable actor.
type Mover struct {
	ID         EntityID
	Box        Box
	Facing     Direction
	SpriteBase int
	Sprite     int
	MoveTimer  Timer
	AnimTimer  Timer
}

// Exempt reports whether an obstacle is ignored by a movement scan.
// A nil Exempt ignores nothing.
type Exempt func(Obstacle) bool

// ExemptKinds ignores every obstacle whose kind is in s.
func ExemptKinds(s KindSet) Exempt {
	return func(o Obstacle) bool { return s.Has(o.Kind) }
}

// Or ignores an obstacle when either predicate does.
func (e Exempt) Or(other Exempt) Exempt {
	switch {
	case e == nil:
		return other
	case other == nil:
		return e
	}
	return func(o Obstacle) bool { return e(o) || other(o) }
}

// MovementOutcome describes what ResolveMove did this tick.
type MovementOutcome struct {
	Turned   bool
	Snapped  bool
	Blocked  bool
	Moved    bool
	Distance float64
	// Blocker is the obstacle that stopped or capped the move, zero if none.
	Blocker EntityID
}

// SnapLane rounds v to the nearest multiple of width.
func SnapLane(v, width float64) float64 {
	if width <= 0 {
		return v
	}
	return math.Round(v/width) * width
}

// ResolveMove applies one tick of steering to m.
//
// A request that differs from the current facing is a turn: the facing and
// sprite change, and unless the tank reverses, the coordinate across the new
// travel axis snaps to the nearest lane of the given width. Nothing
// translates on a turn tick.
//
// Otherwise every non-exempt obstacle is tested with Clearance. Any
// non-positive clearance blocks the move. The actor advances by
// min(speed, smallest clearance) once the move timer fires.
func ResolveMove(m *Mover, obstacles []Obstacle, requested Direction, speed float64, dt time.Duration, exempt Exempt, lane float64) MovementOutcome {
	var out MovementOutcome

	if requested != m.Facing {
		m.Sprite = FacingSprite(m.SpriteBase, requested)
		if !m.Facing.IsOpposite(requested) {
			if requested.Vertical() {
				m.Box.Center.X = SnapLane(m.Box.Center.X, lane)
			} else {
				m.Box.Center.Y = SnapLane(m.Box.Center.Y, lane)
			}
			out.Snapped = true
		}
		m.Facing = requested
		out.Turned = true
		return out
	}

	if m.AnimTimer.Tick(dt) {
		m.Sprite ^= 1
	}

	minClearance := math.Inf(1)
	for _, o := range obstacles {
		if o.ID == m.ID || !o.Kind.Collidable() {
			continue
		}
		if exempt != nil && exempt(o) {
			continue
		}
		dist, ok := Clearance(m.Box, o.Box, m.Facing)
		if !ok {
			continue
		}
		if dist <= 0 {
			out.Blocked = true
			out.Blocker = o.ID
			return out
		}
		if dist < minClearance {
			minClearance = dist
			if dist < speed {
				out.Blocker = o.ID
			}
		}
	}

	if !m.MoveTimer.Tick(dt) {
		return out
	}

	step := math.Min(speed, minClearance)
	u := m.Facing.Unit()
	m.Box.Center.X += u.X * step
	m.Box.Center.Y += u.Y * step
	out.Moved = step > 0
	out.Distance = step
	return out
}
