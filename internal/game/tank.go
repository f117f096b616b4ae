package game

import "time"

// Tank level thresholds. Players climb with Star and Gun power-ups.
const (
	MaxLevel        = 4
	FastShotLevel   = 1 // Bullets travel twice as fast
	DoubleShotLevel = 2 // Two bullets in flight
	IronBreakLevel  = 3
	GrassCutLevel   = 4
)

const (
	spriteP1       = 0
	spriteP2       = 128
	spriteGun      = 48
	spriteLevelGap = 16
)

type classStats struct {
	sprite      int
	hp          int
	speed       float64 // Multiplier on Config.TankSpeed
	bulletSpeed float64 // Multiplier on Config.BulletSpeed
}

var classTable = map[TankClass]classStats{
	ClassPlayer:  {sprite: spriteP1, hp: 1, speed: 1, bulletSpeed: 1},
	ClassLight:   {sprite: 72, hp: 1, speed: 1, bulletSpeed: 1},
	ClassMedium:  {sprite: 88, hp: 1, speed: 1.5, bulletSpeed: 1},
	ClassHeavy:   {sprite: 104, hp: 1, speed: 1, bulletSpeed: 2},
	ClassArmored: {sprite: 120, hp: 4, speed: 1, bulletSpeed: 1},
}

func (c TankClass) String() string {
	switch c {
	case ClassPlayer:
		return "player"
	case ClassLight:
		return "light"
	case ClassMedium:
		return "medium"
	case ClassHeavy:
		return "heavy"
	case ClassArmored:
		return "armored"
	}
	return "unknown"
}

// NewTank builds a tank entity facing up (players) or down (AI) at pos.
func NewTank(c Config, owner Owner, class TankClass, pos Vec3, playerID string) Entity {
	stats := classTable[class]
	base := stats.sprite
	facing := DirDown
	if owner == OwnerP1 || owner == OwnerP2 {
		facing = DirUp
		if owner == OwnerP2 {
			base = spriteP2
		}
	}
	b := c.BlockSize()
	box := Box{Center: pos, Size: Vec2{X: b, Y: b}}
	t := &TankState{
		Mover: Mover{
			Box:        box,
			Facing:     facing,
			SpriteBase: base,
			Sprite:     FacingSprite(base, facing),
			MoveTimer:  NewTimer(c.TankMoveInterval, true),
			AnimTimer:  NewTimer(c.AnimationInterval, true),
		},
		Class:    class,
		HP:       stats.hp,
		PlayerID: playerID,
	}
	if owner == OwnerAI {
		t.AI = &AIState{Heading: facing}
	}
	return Entity{Kind: KindTank, Box: box, Owner: owner, Tank: t}
}

// Speed is the tank's per-step distance.
func (t *TankState) Speed(c Config) float64 {
	return c.TankSpeed * classTable[t.Class].speed
}

// MaxBullets is how many of this tank's bullets may be in flight at once.
func (t *TankState) MaxBullets() int {
	if t.Level >= DoubleShotLevel {
		return 2
	}
	return 1
}

func (t *TankState) bulletSpeed(c Config) float64 {
	s := c.BulletSpeed * classTable[t.Class].bulletSpeed
	if t.Level >= FastShotLevel {
		s *= 2
	}
	return s
}

// Promote applies one Star power-up.
func (t *TankState) Promote() {
	switch {
	case t.Level < IronBreakLevel:
		t.Level++
		t.SpriteBase += spriteLevelGap
		t.Sprite += spriteLevelGap
	case t.Level < MaxLevel:
		t.Level++
	}
}

// ArmGun applies the Gun power-up.
func (t *TankState) ArmGun() {
	t.Level = min(MaxLevel, t.Level+3)
	t.SpriteBase = spriteGun
	t.Sprite = FacingSprite(spriteGun, t.Facing)
}

// GiveShield turns the shield on for the given duration.
func (t *TankState) GiveShield(timer Timer) {
	t.Shield = timer
	t.Shielded = true
}

// fire queues a bullet from tank e if it has one to spare.
func (g *Engine) fire(e *Entity) bool {
	t := e.Tank
	if t.InFlight >= t.MaxBullets() {
		return false
	}
	c := g.Config
	size := c.MinCell
	offset := c.BlockSize()/2 + size/2
	u := t.Facing.Unit()
	center := e.Box.Center.Add(Vec2{X: u.X * offset, Y: u.Y * offset})
	box := Box{Center: center, Size: Vec2{X: size, Y: size}}
	g.cmds.Spawn(Entity{
		Kind:  KindBullet,
		Box:   box,
		Owner: e.Owner,
		Bullet: &BulletState{
			Mover: Mover{
				Box:       box,
				Facing:    t.Facing,
				MoveTimer: NewTimer(c.BulletMoveInterval, true),
			},
			Shooter: e.ID,
			Level:   t.Level,
			Speed:   t.bulletSpeed(c),
		},
	})
	t.InFlight++
	return true
}

// spawnStar queues the spawn animation that becomes a tank when it ends.
func (g *Engine) spawnStar(owner Owner, class TankClass, pos Vec3, playerID string, flashing bool) {
	b := g.Config.BlockSize()
	g.cmds.Spawn(Entity{
		Kind:  KindStar,
		Box:   Box{Center: pos, Size: Vec2{X: b, Y: b}},
		Owner: owner,
		Star: &StarState{
			Timer:    NewTimer(g.Config.SpawnDelay, false),
			PlayerID: playerID,
			Class:    class,
			Flashing: flashing,
		},
	})
}

// tickStars turns finished stars into tanks once their spot is clear.
func (g *Engine) tickStars(dt time.Duration) {
	g.World.EachKind(KindStar, func(s *Entity) bool {
		s.Star.Timer.Tick(dt)
		if !s.Star.Timer.Finished() || g.spotTaken(s.Box) {
			return true
		}
		g.cmds.Despawn(s.ID)
		tank := NewTank(g.Config, s.Owner, s.Star.Class, s.Box.Center, s.Star.PlayerID)
		tank.Tank.Flashing = s.Star.Flashing
		if s.Owner != OwnerAI {
			tank.Tank.GiveShield(NewTimer(g.Config.SpawnShieldDuration, false))
		}
		g.cmds.Spawn(tank)
		return true
	})
}

func (g *Engine) spotTaken(box Box) bool {
	taken := false
	g.World.Each(func(e *Entity) bool {
		if (e.Kind == KindTank || e.Kind == KindBullet) && Intersects(e.Box, box) {
			taken = true
			return false
		}
		return true
	})
	return taken
}

// destroyTank removes a tank with a large explosion and settles the
// consequences for its owner. It reports false if the tank was already
// going away this tick.
func (g *Engine) destroyTank(e *Entity, dropPowerUp bool) bool {
	if !g.cmds.Despawn(e.ID) {
		return false
	}
	g.explode(e.Box.Center, true)
	g.log.Debug("tank destroyed", tankFields(e)...)

	if e.Owner == OwnerAI {
		g.ai.destroyed++
		if dropPowerUp && e.Tank.Flashing {
			g.dropPowerUp()
		}
		return true
	}
	if p := g.players[e.Tank.PlayerID]; p != nil {
		p.Tank = 0
		g.respawnPlayer(p)
	}
	return true
}

// damageTank applies one bullet hit.
func (g *Engine) damageTank(e *Entity) {
	t := e.Tank
	if t.Shielded {
		return
	}
	t.HP--
	if t.HP > 0 {
		// Armored tanks shed their power-up on the first hit.
		if t.Flashing {
			t.Flashing = false
			g.dropPowerUp()
		}
		return
	}
	g.destroyTank(e, true)
}

// tickShields counts down shields on every tank.
func (g *Engine) tickShields(dt time.Duration) {
	g.World.EachKind(KindTank, func(e *Entity) bool {
		t := e.Tank
		if t.Shielded && t.Shield.Tick(dt) {
			t.Shielded = false
		}
		return true
	})
}
