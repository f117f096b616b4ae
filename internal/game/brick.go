package game

import "fmt"

// BrickFragment is one level of the brick subdivision lattice.
//
//	Whole            4 Quarters, never materialised as one box
//	Quarter          2x2 min cells
//	HalfQuarter*     2x1 or 1x2 min cells, named for the half it occupies
//	Min1, Min2       1 min cell, alternating in a checkerboard
type BrickFragment int

const (
	BrickWhole BrickFragment = iota
	BrickQuarter
	BrickHalfQuarterTop
	BrickHalfQuarterRight
	BrickHalfQuarterBottom
	BrickHalfQuarterLeft
	BrickMin1
	BrickMin2
)

var fragmentNames = [...]string{
	"whole", "quarter", "half-quarter-top", "half-quarter-right",
	"half-quarter-bottom", "half-quarter-left", "min1", "min2",
}

func (f BrickFragment) String() string {
	if int(f) >= 0 && int(f) < len(fragmentNames) {
		return fragmentNames[f]
	}
	return fmt.Sprintf("BrickFragment(%d)", int(f))
}

// Size returns the fragment's extents for the given min cell width.
func (f BrickFragment) Size(minCell float64) Vec2 {
	switch f {
	case BrickWhole:
		return Vec2{X: 4 * minCell, Y: 4 * minCell}
	case BrickQuarter:
		return Vec2{X: 2 * minCell, Y: 2 * minCell}
	case BrickHalfQuarterTop, BrickHalfQuarterBottom:
		return Vec2{X: 2 * minCell, Y: minCell}
	case BrickHalfQuarterLeft, BrickHalfQuarterRight:
		return Vec2{X: minCell, Y: 2 * minCell}
	default:
		return Vec2{X: minCell, Y: minCell}
	}
}

// MinCells returns how many min cells the fragment covers.
func (f BrickFragment) MinCells() int {
	switch f {
	case BrickWhole:
		return 16
	case BrickQuarter:
		return 4
	case BrickMin1, BrickMin2:
		return 1
	default:
		return 2
	}
}

// OutcomeKind classifies the result of a projectile hitting a fragment.
type OutcomeKind int

const (
	// Unaffected: the hit is absorbed and the terrain does not change.
	Unaffected OutcomeKind = iota
	// Destroyed: the fragment goes away with nothing left behind.
	Destroyed
	// Replace: the fragment goes away and one smaller fragment takes its place.
	Replace
	// ReplaceTwo: reserved, no current fragment splits into two.
	ReplaceTwo
)

func (k OutcomeKind) String() string {
	switch k {
	case Unaffected:
		return "unaffected"
	case Destroyed:
		return "destroyed"
	case Replace:
		return "replace"
	case ReplaceTwo:
		return "replace-two"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// Offset is a displacement in half-min-cell units.
type Offset struct {
	DX int
	DY int
}

// Replacement is a fragment spawned relative to the destroyed one's center.
type Replacement struct {
	Fragment BrickFragment
	Offset   Offset
}

// Position resolves the replacement's center.
func (r Replacement) Position(center Vec3, halfMinCell float64) Vec3 {
	return center.Add(Vec2{X: float64(r.Offset.DX) * halfMinCell, Y: float64(r.Offset.DY) * halfMinCell})
}

// FragmentOutcome is what OnImpact decided.
type FragmentOutcome struct {
	Kind         OutcomeKind
	Replacements []Replacement
}

// RemovesFragment reports whether the struck fragment must be despawned.
func (o FragmentOutcome) RemovesFragment() bool {
	return o.Kind != Unaffected
}

func replace(f BrickFragment, dx, dy int) FragmentOutcome {
	return FragmentOutcome{Kind: Replace, Replacements: []Replacement{{Fragment: f, Offset: Offset{DX: dx, DY: dy}}}}
}

// OnImpact decides what a projectile hitting side of fragment f does.
//
// A Quarter loses the half facing the hit. A half-quarter struck across its
// short axis keeps the min cell away from the hit; struck along its long axis
// it is unaffected. Min cells are destroyed outright. The surviving min cells
// alternate Min1/Min2 so the rubble keeps the checkerboard texture:
//
//	Min1 Min2
//	Min2 Min1
//
// Calling OnImpact with BrickWhole is a programming error: whole bricks are
// only ever spawned as four quarters.
func OnImpact(f BrickFragment, side Side) FragmentOutcome {
	switch f {
	case BrickQuarter:
		switch side {
		case SideTop:
			return replace(BrickHalfQuarterBottom, 0, -1)
		case SideBottom:
			return replace(BrickHalfQuarterTop, 0, 1)
		case SideLeft:
			return replace(BrickHalfQuarterRight, 1, 0)
		case SideRight:
			return replace(BrickHalfQuarterLeft, -1, 0)
		}
	case BrickHalfQuarterTop:
		switch side {
		case SideTop, SideBottom:
			return FragmentOutcome{Kind: Unaffected}
		case SideLeft:
			return replace(BrickMin2, 1, 0)
		case SideRight:
			return replace(BrickMin1, -1, 0)
		}
	case BrickHalfQuarterBottom:
		switch side {
		case SideTop, SideBottom:
			return FragmentOutcome{Kind: Unaffected}
		case SideLeft:
			return replace(BrickMin1, 1, 0)
		case SideRight:
			return replace(BrickMin2, -1, 0)
		}
	case BrickHalfQuarterLeft:
		switch side {
		case SideLeft, SideRight:
			return FragmentOutcome{Kind: Unaffected}
		case SideTop:
			return replace(BrickMin2, 0, -1)
		case SideBottom:
			return replace(BrickMin1, 0, 1)
		}
	case BrickHalfQuarterRight:
		switch side {
		case SideLeft, SideRight:
			return FragmentOutcome{Kind: Unaffected}
		case SideTop:
			return replace(BrickMin1, 0, -1)
		case SideBottom:
			return replace(BrickMin2, 0, 1)
		}
	case BrickMin1, BrickMin2:
		return FragmentOutcome{Kind: Destroyed}
	}
	panic(fmt.Sprintf("brick: impact on %s from %s is unreachable", f, side))
}

// SplitWhole returns the centers of the four quarters a whole brick
// materialises as.
func SplitWhole(center Vec3, minCell float64) [4]Vec3 {
	return [4]Vec3{
		center.Add(Vec2{X: -minCell, Y: minCell}),
		center.Add(Vec2{X: minCell, Y: minCell}),
		center.Add(Vec2{X: -minCell, Y: -minCell}),
		center.Add(Vec2{X: minCell, Y: -minCell}),
	}
}
