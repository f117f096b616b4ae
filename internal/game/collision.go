package game

// Clearance returns the signed free distance a mover travelling in d has
// before its leading edge reaches the obstacle's trailing edge.
//
// ok is false when the obstacle is not in the mover's path: either the two
// boxes do not overlap on the axis perpendicular to d (touching edges do not
// count), or the obstacle's center is not ahead of the mover's leading edge.
// A non-positive distance means contact or overlap.
func Clearance(mover, obstacle Box, d Direction) (dist float64, ok bool) {
	aMin, aMax := mover.Min(), mover.Max()
	bMin, bMax := obstacle.Min(), obstacle.Max()

	if d.Vertical() {
		if !(bMin.X < aMax.X && bMax.X > aMin.X) {
			return 0, false
		}
	} else if !(bMin.Y < aMax.Y && bMax.Y > aMin.Y) {
		return 0, false
	}

	switch d {
	case DirUp:
		if obstacle.Center.Y <= aMax.Y {
			return 0, false
		}
		return bMin.Y - aMax.Y, true
	case DirDown:
		if obstacle.Center.Y >= aMin.Y {
			return 0, false
		}
		return aMin.Y - bMax.Y, true
	case DirRight:
		if obstacle.Center.X <= aMax.X {
			return 0, false
		}
		return bMin.X - aMax.X, true
	case DirLeft:
		if obstacle.Center.X >= aMin.X {
			return 0, false
		}
		return aMin.X - bMax.X, true
	}
	return 0, false
}

// Intersects reports whether a and b share interior area. Touching edges do
// not intersect.
func Intersects(a, b Box) bool {
	aMin, aMax := a.Min(), a.Max()
	bMin, bMax := b.Min(), b.Max()
	return aMin.X < bMax.X && aMax.X > bMin.X && aMin.Y < bMax.Y && aMax.Y > bMin.Y
}

// Overlap tests a against b regardless of travel direction and reports which
// side of b a came through, picking the axis of shallower penetration.
func Overlap(a, b Box) (Side, bool) {
	if !Intersects(a, b) {
		return 0, false
	}
	aMin, aMax := a.Min(), a.Max()
	bMin, bMax := b.Min(), b.Max()

	xDepth := min(aMax.X, bMax.X) - max(aMin.X, bMin.X)
	yDepth := min(aMax.Y, bMax.Y) - max(aMin.Y, bMin.Y)

	if xDepth < yDepth {
		if a.Center.X < b.Center.X {
			return SideLeft, true
		}
		return SideRight, true
	}
	if a.Center.Y < b.Center.Y {
		return SideBottom, true
	}
	return SideTop, true
}

// Contact reports whether a projectile travelling in d touches or overlaps
// obstacle. Flush contact ahead counts, as does any overlap, so a shot fired
// point-blank into a wall still lands.
func Contact(projectile, obstacle Box, d Direction) bool {
	if Intersects(projectile, obstacle) {
		return true
	}
	dist, ok := Clearance(projectile, obstacle, d)
	return ok && dist <= 0
}
