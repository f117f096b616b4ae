package game

import (
	"math/rand/v2"
	"time"
)

// Enemy tanks spawned in these positions of the reserve (1-based) flash and
// drop a power-up when hit.
var flashingSpawns = map[int]bool{4: true, 11: true, 18: true}

// AIState is the steering memory of an enemy tank.
type AIState struct {
	Heading Direction
	Turn    Timer
	Blocked bool
}

// aiDirector feeds enemies onto the field and steers them.
type aiDirector struct {
	reserve    int
	spawned    int
	destroyed  int
	spawnTimer Timer
	rng        *rand.Rand
}

func newAIDirector(c Config) *aiDirector {
	seed := uint64(c.Seed)
	return &aiDirector{
		reserve:    c.AIReserve,
		spawnTimer: NewTimer(c.AISpawnInterval, true),
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (d *aiDirector) pickClass() TankClass {
	switch r := d.rng.IntN(10); {
	case r < 5:
		return ClassLight
	case r < 7:
		return ClassMedium
	case r < 9:
		return ClassHeavy
	default:
		return ClassArmored
	}
}

// pickHeading favours heading down toward the base. A blocked tank never
// picks the heading it is stuck on.
func (d *aiDirector) pickHeading(current Direction, blocked bool) Direction {
	weights := [4]int{DirUp: 1, DirRight: 2, DirDown: 4, DirLeft: 2}
	if blocked {
		weights[current] = 0
	}
	total := 0
	for _, w := range weights {
		total += w
	}
	r := d.rng.IntN(total)
	for _, dir := range Directions {
		if r < weights[dir] {
			return dir
		}
		r -= weights[dir]
	}
	return DirDown
}

func (d *aiDirector) turnTimer() Timer {
	return NewTimer(2*time.Second+time.Duration(d.rng.Int64N(int64(2*time.Second))), false)
}

// spawnEnemy queues the next reserve tank at the next spawn point.
func (g *Engine) spawnEnemy() {
	d := g.ai
	d.spawned++
	d.reserve--
	pos := g.Config.AISpawn(d.spawned - 1)
	g.spawnStar(OwnerAI, d.pickClass(), pos, "", flashingSpawns[d.spawned])
}

// enemiesInPlay counts enemy tanks and pending enemy stars.
func (g *Engine) enemiesInPlay() int {
	return g.World.Count(func(e *Entity) bool {
		return e.Owner == OwnerAI && (e.Kind == KindTank || e.Kind == KindStar)
	})
}

// tickAIDirector spawns reserve tanks on its interval while there is room.
func (g *Engine) tickAIDirector(dt time.Duration) {
	d := g.ai
	if !d.spawnTimer.Tick(dt) {
		return
	}
	if d.reserve > 0 && g.enemiesInPlay() < g.Config.AIMaxOnField {
		g.spawnEnemy()
	}
}

// steerAI updates headings and fires for every enemy tank. Frozen enemies
// do nothing.
func (g *Engine) steerAI(dt time.Duration) {
	if g.clockActive {
		return
	}
	d := g.ai
	fireChance := g.Config.AIFireChance * dt.Seconds()
	g.World.EachKind(KindTank, func(e *Entity) bool {
		ai := e.Tank.AI
		if ai == nil {
			return true
		}
		if ai.Turn.Period == 0 {
			ai.Turn = d.turnTimer()
		}
		if ai.Turn.Tick(dt) || ai.Blocked {
			ai.Heading = d.pickHeading(ai.Heading, ai.Blocked)
			ai.Turn = d.turnTimer()
			ai.Blocked = false
		}
		if d.rng.Float64() < fireChance {
			g.fire(e)
		}
		return true
	})
}
