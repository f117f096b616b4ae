package game

import (
	"time"

	"go.uber.org/zap"
)

// Kinds a bullet flies over.
var bulletPassKinds = Kinds(KindRiver, KindSnow, KindGrass, KindPowerUp)

// bulletExempt returns what bullet b ignores: ground cover, power-ups, its
// own shooter, and tanks and bullets on its own team.
func bulletExempt(b *Entity) Exempt {
	shooter := b.Bullet.Shooter
	owner := b.Owner
	return func(o Obstacle) bool {
		if bulletPassKinds.Has(o.Kind) || o.ID == shooter {
			return true
		}
		if o.Kind == KindTank || o.Kind == KindBullet {
			return !owner.IsEnemy(o.Owner)
		}
		return false
	}
}

// moveBullet advances one bullet, stopping flush at the first contact.
// A bullet already touching something stays put for the broad phase: a
// fragment it overlaps has its center behind the leading edge, so the
// resolver alone would step straight through it.
func (g *Engine) moveBullet(e *Entity, dt time.Duration) {
	b := e.Bullet
	exempt := bulletExempt(e)
	for _, o := range g.snapshot {
		if o.ID != e.ID && !exempt(o) && Contact(e.Box, o.Box, b.Facing) {
			return
		}
	}
	out := ResolveMove(&b.Mover, g.snapshot, b.Facing, b.Speed, dt, exempt, 0)
	if out.Moved {
		g.syncMover(e, b.Box)
	}
}

// resolveBullets is the projectile broad phase. Every contact a bullet has
// this tick is gathered first, then the bullet is removed once with one
// explosion and each contact is resolved. A fragment already removed by an
// earlier bullet this tick is left alone.
func (g *Engine) resolveBullets() {
	g.World.EachKind(KindBullet, func(e *Entity) bool {
		if g.cmds.Despawning(e.ID) {
			return true
		}
		b := e.Bullet
		exempt := bulletExempt(e)
		var hits []Obstacle
		for _, o := range g.snapshot {
			if o.ID == e.ID {
				continue
			}
			if o.Kind == KindGrass && b.Level >= GrassCutLevel && Intersects(e.Box, o.Box) {
				g.cmds.Despawn(o.ID)
				continue
			}
			if exempt(o) {
				continue
			}
			if Contact(e.Box, o.Box, b.Facing) {
				hits = append(hits, o)
			}
		}
		if len(hits) == 0 {
			return true
		}
		if !g.removeBullet(e) {
			return true
		}
		g.explode(e.Box.Center, false)
		for _, o := range hits {
			g.impact(e, o)
		}
		return true
	})
}

// removeBullet queues the bullet for removal and returns the shot to its
// shooter. It reports false if the bullet was already going away.
func (g *Engine) removeBullet(e *Entity) bool {
	if !g.cmds.Despawn(e.ID) {
		return false
	}
	if shooter, ok := g.World.Get(e.Bullet.Shooter); ok && shooter.Tank != nil {
		shooter.Tank.InFlight = max(0, shooter.Tank.InFlight-1)
	}
	return true
}

// impact applies bullet e striking obstacle o.
func (g *Engine) impact(e *Entity, o Obstacle) {
	b := e.Bullet
	switch o.Kind {
	case KindBrick:
		g.hitBrick(o, b.Facing.ImpactSide())
	case KindIron:
		if b.Level >= IronBreakLevel {
			g.cmds.Despawn(o.ID)
		}
	case KindBase:
		g.breakBase(o.ID)
	case KindTank:
		if t, ok := g.World.Get(o.ID); ok && !g.cmds.Despawning(o.ID) {
			g.damageTank(t)
		}
	case KindBullet:
		if other, ok := g.World.Get(o.ID); ok && g.removeBullet(other) {
			g.explode(other.Box.Center, false)
		}
	}
}

// hitBrick fragments the brick struck on side.
func (g *Engine) hitBrick(o Obstacle, side Side) {
	out := OnImpact(o.Brick, side)
	if !out.RemovesFragment() {
		return
	}
	e, ok := g.World.Get(o.ID)
	if !ok || !g.cmds.Despawn(o.ID) {
		return
	}
	half := g.Config.HalfMinCell()
	for _, r := range out.Replacements {
		frag := BrickEntity(r.Fragment, r.Position(e.Box.Center, half), g.Config)
		frag.BaseWall = e.BaseWall
		g.cmds.Spawn(frag)
	}
}

// breakBase destroys the eagle, which ends the game for the players.
func (g *Engine) breakBase(id EntityID) {
	base, ok := g.World.Get(id)
	if !ok || base.Broken {
		return
	}
	base.Broken = true
	g.explode(base.Box.Center, true)
	g.log.Info("base destroyed", zap.Uint64("tick", g.ticks))
}

// explode queues a cosmetic explosion at pos.
func (g *Engine) explode(pos Vec3, large bool) {
	size := g.Config.QuarterCell()
	if large {
		size = 2 * g.Config.BlockSize()
	}
	pos.Z = 2
	g.cmds.Spawn(Entity{
		Kind:  KindExplosion,
		Box:   Box{Center: pos, Size: Vec2{X: size, Y: size}},
		Life:  NewTimer(g.Config.ExplosionDuration, false),
		Large: large,
	})
}

// tickExplosions removes explosions that have played out.
func (g *Engine) tickExplosions(dt time.Duration) {
	g.World.EachKind(KindExplosion, func(e *Entity) bool {
		if e.Life.Tick(dt) {
			g.cmds.Despawn(e.ID)
		}
		return true
	})
}
