package game

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// TankClass selects a tank's sprite set and stats.
type TankClass int

const (
	ClassPlayer TankClass = iota
	ClassLight
	ClassMedium // Fast mover
	ClassHeavy  // Fast bullets
	ClassArmored
)

// TankState is the per-tank payload.
type TankState struct {
	Mover
	Class    TankClass
	Level    int
	HP       int
	PlayerID string
	Shield   Timer
	Shielded bool
	Flashing bool // Drops a power-up when destroyed
	InFlight int  // Live bullets fired by this tank
	AI       *AIState
}

// BulletState is the per-bullet payload.
type BulletState struct {
	Mover
	Shooter EntityID
	Level   int // Shooter's level when fired
	Speed   float64
}

// StarState is a pending tank spawn.
type StarState struct {
	Timer    Timer
	PlayerID string
	Class    TankClass
	Flashing bool
}

// Entity is one record in the world arena. Kind selects which payload is set.
type Entity struct {
	ID       EntityID
	Kind     Kind
	Box      Box
	Owner    Owner
	Brick    BrickFragment
	BaseWall bool // Brick or iron placed around the base
	Broken   bool // Base only
	PowerUp  PowerUpType
	Tank     *TankState
	Bullet   *BulletState
	Star     *StarState
	Life     Timer // Explosion lifetime
	Large    bool  // Tank explosion
}

// Obstacle returns the entity's collision view.
func (e *Entity) Obstacle() Obstacle {
	return Obstacle{ID: e.ID, Kind: e.Kind, Box: e.Box, Owner: e.Owner, Brick: e.Brick}
}

// World is an arena of entities keyed by monotonically allocated IDs.
type World struct {
	next     EntityID
	entities map[EntityID]*Entity
	order    []EntityID
	holes    int
}

// NewWorld returns an empty arena.
func NewWorld() *World {
	return &World{entities: make(map[EntityID]*Entity)}
}

// Spawn stores e under a fresh ID and returns it.
func (w *World) Spawn(e Entity) EntityID {
	w.next++
	e.ID = w.next
	if e.Tank != nil {
		e.Tank.ID = e.ID
	}
	if e.Bullet != nil {
		e.Bullet.ID = e.ID
	}
	w.entities[e.ID] = &e
	w.order = append(w.order, e.ID)
	return e.ID
}

// Despawn removes an entity. Removing a missing ID is a no-op.
func (w *World) Despawn(id EntityID) bool {
	if _, ok := w.entities[id]; !ok {
		return false
	}
	delete(w.entities, id)
	w.holes++
	if w.holes > len(w.order)/2 {
		w.compact()
	}
	return true
}

func (w *World) compact() {
	w.order = slices.DeleteFunc(w.order, func(id EntityID) bool {
		_, ok := w.entities[id]
		return !ok
	})
	w.holes = 0
}

// Get looks up an entity.
func (w *World) Get(id EntityID) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return len(w.entities)
}

// Each visits live entities in ascending ID order until fn returns false.
func (w *World) Each(fn func(*Entity) bool) {
	for _, id := range w.order {
		e, ok := w.entities[id]
		if !ok {
			continue
		}
		if !fn(e) {
			return
		}
	}
}

// EachKind visits live entities of kind k in ascending ID order.
func (w *World) EachKind(k Kind, fn func(*Entity) bool) {
	w.Each(func(e *Entity) bool {
		if e.Kind != k {
			return true
		}
		return fn(e)
	})
}

// Count returns how many live entities match.
func (w *World) Count(match func(*Entity) bool) int {
	n := 0
	w.Each(func(e *Entity) bool {
		if match(e) {
			n++
		}
		return true
	})
	return n
}

// Obstacles snapshots every collidable entity in ascending ID order,
// leaving out the excluded IDs.
func (w *World) Obstacles(exclude ...EntityID) []Obstacle {
	out := make([]Obstacle, 0, len(w.entities))
	w.Each(func(e *Entity) bool {
		if e.Kind.Collidable() && !slices.Contains(exclude, e.ID) {
			out = append(out, e.Obstacle())
		}
		return true
	})
	return out
}

// Checksum hashes the simulation-relevant state of every entity in ID order.
// Two worlds fed the same seed and inputs hash identically tick for tick.
func (w *World) Checksum() uint64 {
	h := xxhash.New()
	buf := make([]byte, 0, 96)
	w.Each(func(e *Entity) bool {
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint64(buf, uint64(e.ID))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(e.Kind))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(e.Box.Center.X))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(e.Box.Center.Y))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(e.Box.Size.X))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(e.Box.Size.Y))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(e.Owner))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(e.Brick))
		if e.Tank != nil {
			buf = binary.LittleEndian.AppendUint64(buf, uint64(e.Tank.Facing))
			buf = binary.LittleEndian.AppendUint64(buf, uint64(e.Tank.Level))
		}
		_, _ = h.Write(buf)
		return true
	})
	return h.Sum64()
}

// Commands buffers world mutations so that queries made during a tick phase
// never observe half-applied changes. Despawns are deduplicated.
type Commands struct {
	spawns   []Entity
	despawns []EntityID
	pending  map[EntityID]struct{}
}

// Spawn queues e.
func (c *Commands) Spawn(e Entity) {
	c.spawns = append(c.spawns, e)
}

// Despawn queues id and reports whether it was not already queued.
func (c *Commands) Despawn(id EntityID) bool {
	if c.pending == nil {
		c.pending = make(map[EntityID]struct{})
	}
	if _, ok := c.pending[id]; ok {
		return false
	}
	c.pending[id] = struct{}{}
	c.despawns = append(c.despawns, id)
	return true
}

// Despawning reports whether id is queued for removal.
func (c *Commands) Despawning(id EntityID) bool {
	_, ok := c.pending[id]
	return ok
}

// Len returns the number of queued mutations.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.despawns)
}

// Apply runs despawns then spawns in queue order and resets the buffer.
func (c *Commands) Apply(w *World) []EntityID {
	for _, id := range c.despawns {
		w.Despawn(id)
	}
	ids := make([]EntityID, 0, len(c.spawns))
	for _, e := range c.spawns {
		ids = append(ids, w.Spawn(e))
	}
	c.spawns = c.spawns[:0]
	c.despawns = c.despawns[:0]
	clear(c.pending)
	return ids
}
