package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PowerUpType is the bonus a power-up grants.
type PowerUpType int

const (
	PowerUpHelmet  PowerUpType = iota // Temporary shield
	PowerUpClock                      // Freezes enemies
	PowerUpShovel                     // Iron base wall
	PowerUpStar                       // One level up
	PowerUpGrenade                    // Destroys every enemy on the field
	PowerUpTank                       // Extra life
	PowerUpGun                        // Jump to max level
	powerUpCount
)

var powerUpNames = [...]string{"helmet", "clock", "shovel", "star", "grenade", "tank", "gun"}

func (p PowerUpType) String() string {
	if p >= 0 && p < powerUpCount {
		return powerUpNames[p]
	}
	return fmt.Sprintf("PowerUpType(%d)", int(p))
}

// MaxLives caps the Tank power-up.
const MaxLives = 99

// Kinds a power-up will not be dropped on.
var powerUpAvoid = Kinds(KindBase, KindIron, KindRiver)

// dropPowerUp replaces any power-up on the field with a random one on a
// random block.
func (g *Engine) dropPowerUp() {
	g.World.EachKind(KindPowerUp, func(e *Entity) bool {
		g.cmds.Despawn(e.ID)
		return true
	})

	rng := g.ai.rng
	kind := PowerUpType(rng.IntN(int(powerUpCount)))
	b := g.Config.BlockSize()
	var box Box
	for range 16 {
		center := g.Config.BlockCenter(rng.IntN(FieldBlocks), rng.IntN(FieldBlocks))
		center.Z = 2
		box = Box{Center: center, Size: Vec2{X: b, Y: b}}
		if !g.blockedFor(box, powerUpAvoid) {
			break
		}
	}
	g.cmds.Spawn(Entity{Kind: KindPowerUp, Box: box, PowerUp: kind})
	g.log.Debug("power-up dropped", zap.Stringer("type", kind), zap.Float64("x", box.Center.X), zap.Float64("y", box.Center.Y))
}

func (g *Engine) blockedFor(box Box, kinds KindSet) bool {
	blocked := false
	g.World.Each(func(e *Entity) bool {
		if kinds.Has(e.Kind) && Intersects(e.Box, box) {
			blocked = true
			return false
		}
		return true
	})
	return blocked
}

// collectPowerUps hands every power-up a player tank drives over to its
// player.
func (g *Engine) collectPowerUps() {
	g.World.EachKind(KindPowerUp, func(pu *Entity) bool {
		g.World.EachKind(KindTank, func(t *Entity) bool {
			if t.Owner.Team() != TeamPlayers || g.cmds.Despawning(t.ID) {
				return true
			}
			if _, ok := Overlap(t.Box, pu.Box); !ok {
				return true
			}
			if g.cmds.Despawn(pu.ID) {
				g.applyPowerUp(t, pu.PowerUp)
			}
			return false
		})
		return true
	})
}

func (g *Engine) applyPowerUp(t *Entity, kind PowerUpType) {
	c := g.Config
	tank := t.Tank
	switch kind {
	case PowerUpHelmet:
		tank.GiveShield(NewTimer(c.ShieldDuration, false))
	case PowerUpClock:
		g.clock = NewTimer(c.ClockDuration, false)
		g.clockActive = true
	case PowerUpShovel:
		g.fortifyBase(KindIron)
		g.shovel = NewTimer(c.ShovelDuration, false)
		g.shovelActive = true
	case PowerUpStar:
		tank.Promote()
	case PowerUpGrenade:
		g.World.EachKind(KindTank, func(e *Entity) bool {
			if t.Owner.IsEnemy(e.Owner) {
				g.destroyTank(e, false)
			}
			return true
		})
	case PowerUpTank:
		if p := g.players[tank.PlayerID]; p != nil {
			p.Lives = min(MaxLives, p.Lives+1)
		}
	case PowerUpGun:
		tank.ArmGun()
	}
	g.log.Info("power-up collected",
		zap.String("player", tank.PlayerID),
		zap.Stringer("type", kind),
		zap.Int("level", tank.Level),
	)
}

// fortifyBase rebuilds the wall around the base out of kind quarters,
// replacing whatever brick or iron is left of it.
func (g *Engine) fortifyBase(kind Kind) {
	area := g.Config.BaseWallArea()
	g.World.Each(func(e *Entity) bool {
		if (e.Kind == KindBrick || e.Kind == KindIron) && area.Contains(e.Box) {
			g.cmds.Despawn(e.ID)
		}
		return true
	})
	for _, p := range g.Config.BaseWallPositions() {
		e := quarterEntity(kind, p, g.Config)
		e.BaseWall = true
		g.cmds.Spawn(e)
	}
}

// tickPowerUpTimers ends the clock and shovel effects.
func (g *Engine) tickPowerUpTimers(dt time.Duration) {
	if g.clockActive && g.clock.Tick(dt) {
		g.clockActive = false
	}
	if g.shovelActive && g.shovel.Tick(dt) {
		g.shovelActive = false
		g.fortifyBase(KindBrick)
	}
}
