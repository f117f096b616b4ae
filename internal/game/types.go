package game

import "fmt"

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3 is a world position. Z only orders drawing and never takes part in collision.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Truncate drops the depth coordinate.
func (v Vec3) Truncate() Vec2 {
	return Vec2{X: v.X, Y: v.Y}
}

// Add offsets the position on the XY plane.
func (v Vec3) Add(d Vec2) Vec3 {
	return Vec3{X: v.X + d.X, Y: v.Y + d.Y, Z: v.Z}
}

// Box is an axis-aligned rectangle described by its center and full extents.
type Box struct {
	Center Vec3 `json:"center"`
	Size   Vec2 `json:"size"`
}

// NewBox builds a box centered at (x, y) with the given width and height.
func NewBox(x, y, w, h float64) Box {
	return Box{Center: Vec3{X: x, Y: y}, Size: Vec2{X: w, Y: h}}
}

// Min returns the bottom-left corner.
func (b Box) Min() Vec2 {
	return Vec2{X: b.Center.X - b.Size.X/2, Y: b.Center.Y - b.Size.Y/2}
}

// Max returns the top-right corner.
func (b Box) Max() Vec2 {
	return Vec2{X: b.Center.X + b.Size.X/2, Y: b.Center.Y + b.Size.Y/2}
}

// Translate returns the box moved by (dx, dy).
func (b Box) Translate(dx, dy float64) Box {
	b.Center.X += dx
	b.Center.Y += dy
	return b
}

// Contains reports whether o lies entirely inside b (edges may coincide).
func (b Box) Contains(o Box) bool {
	bMin, bMax := b.Min(), b.Max()
	oMin, oMax := o.Min(), o.Max()
	return oMin.X >= bMin.X && oMin.Y >= bMin.Y && oMax.X <= bMax.X && oMax.Y <= bMax.Y
}

// Direction is one of the four cardinal travel directions.
// The values form a clockwise cycle so turning is modular arithmetic.
type Direction int

const (
	DirUp Direction = iota
	DirRight
	DirDown
	DirLeft
)

// Directions lists every direction in cycle order.
var Directions = [4]Direction{DirUp, DirRight, DirDown, DirLeft}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// IsOpposite reports whether o points the other way from d.
func (d Direction) IsOpposite(o Direction) bool {
	return d.Opposite() == o
}

// TurnRight rotates clockwise.
func (d Direction) TurnRight() Direction {
	return (d + 1) % 4
}

// TurnLeft rotates counter-clockwise.
func (d Direction) TurnLeft() Direction {
	return (d + 3) % 4
}

// Vertical reports whether d travels along the Y axis.
func (d Direction) Vertical() bool {
	return d == DirUp || d == DirDown
}

// Unit returns the unit step for d. +Y is up.
func (d Direction) Unit() Vec2 {
	switch d {
	case DirUp:
		return Vec2{Y: 1}
	case DirRight:
		return Vec2{X: 1}
	case DirDown:
		return Vec2{Y: -1}
	default:
		return Vec2{X: -1}
	}
}

// ImpactSide is the side of a target struck by something travelling in d.
func (d Direction) ImpactSide() Side {
	return Side(d.Opposite())
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirRight:
		return "right"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Side names an edge of a box.
type Side int

const (
	SideTop Side = iota
	SideRight
	SideBottom
	SideLeft
)

// Opposite returns the facing edge.
func (s Side) Opposite() Side {
	return (s + 2) % 4
}

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideRight:
		return "right"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// EntityID is an opaque handle into the world arena. IDs are never reused,
// so ascending ID order is also spawn order.
type EntityID uint64

// Kind tags what an entity is.
type Kind int

const (
	KindBoundary Kind = iota // Edge of the battlefield
	KindBrick
	KindIron
	KindRiver
	KindGrass
	KindSnow
	KindBase // The eagle
	KindTank
	KindBullet
	KindPowerUp
	KindStar      // Spawn animation, not collidable
	KindExplosion // Cosmetic, not collidable
)

var kindNames = [...]string{
	"boundary", "brick", "iron", "river", "grass", "snow", "base",
	"tank", "bullet", "powerup", "star", "explosion",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Collidable reports whether entities of this kind take part in collision queries.
func (k Kind) Collidable() bool {
	return k != KindStar && k != KindExplosion
}

// KindSet is a bitmask of kinds.
type KindSet uint32

// Kinds builds a set from the given kinds.
func Kinds(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= 1 << uint(k)
	}
	return s
}

// Has reports whether k is in the set.
func (s KindSet) Has(k Kind) bool {
	return s&(1<<uint(k)) != 0
}

// Team separates friend from foe for bullets and power-ups.
type Team int

const (
	TeamNone Team = iota
	TeamPlayers
	TeamAI
)

// Owner identifies who controls a tank or fired a bullet.
type Owner int

const (
	OwnerNone Owner = iota
	OwnerP1
	OwnerP2
	OwnerAI
)

// Team returns the side the owner fights for.
func (o Owner) Team() Team {
	switch o {
	case OwnerP1, OwnerP2:
		return TeamPlayers
	case OwnerAI:
		return TeamAI
	}
	return TeamNone
}

// IsEnemy reports whether o and other fight on opposite teams.
func (o Owner) IsEnemy(other Owner) bool {
	a, b := o.Team(), other.Team()
	return a != TeamNone && b != TeamNone && a != b
}

func (o Owner) String() string {
	switch o {
	case OwnerP1:
		return "p1"
	case OwnerP2:
		return "p2"
	case OwnerAI:
		return "ai"
	}
	return "none"
}

// Obstacle is the read-only view of a collidable entity handed to the
// movement resolver and the projectile broad phase. Every obstacle exposes
// its Box directly; nothing derives sizes from the kind.
type Obstacle struct {
	ID    EntityID
	Kind  Kind
	Box   Box
	Owner Owner         // Tanks and bullets
	Brick BrickFragment // Brick only
}
