package game

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrGameFull        = errors.New("game is full")
	ErrGameRunning     = errors.New("game already in progress")
	ErrDuplicatePlayer = errors.New("player already joined")
	ErrNoPlayers       = errors.New("need at least 1 player to start")
)

// GameStatus represents the current game phase.
type GameStatus int

const (
	StatusLobby   GameStatus = iota // Waiting for players
	StatusRunning                   // Game in progress
	StatusOver                      // Base destroyed, players out, or reserve cleared
)

func (s GameStatus) String() string {
	switch s {
	case StatusLobby:
		return "lobby"
	case StatusRunning:
		return "running"
	case StatusOver:
		return "over"
	}
	return fmt.Sprintf("GameStatus(%d)", int(s))
}

// ActionType represents the type of player action.
type ActionType int

const (
	ActionMove ActionType = iota // Hold a direction
	ActionStop                   // Release the held direction
	ActionFire
)

// Action represents a player's input action.
type Action struct {
	PlayerID string
	Type     ActionType
	Dir      Direction // Only relevant for ActionMove
}

// Player is a human seat in the game.
type Player struct {
	ID    string
	Name  string
	Owner Owner
	Lives int      // Spare lives
	Tank  EntityID // Zero while dead or spawning
	Out   bool     // No lives left

	heading   Direction
	holding   bool
	heldUntil time.Duration
	firing    bool
}

// Engine is the authoritative simulation. Every tick runs its phases in a
// fixed order against a single world, so identical inputs replay
// identically.
type Engine struct {
	Config Config
	World  *World

	level   Level
	cmds    Commands
	log     *zap.Logger
	players map[string]*Player
	ai      *aiDirector

	snapshot []Obstacle
	slots    map[EntityID]int

	clock        Timer
	clockActive  bool
	shovel       Timer
	shovelActive bool

	status GameStatus
	winner Team
	ticks  uint64
	now    time.Duration

	actions  chan Action
	done     chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	onTick   func(Snapshot) // Callback after each tick with a copy of the state
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes engine events to l.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine validates cfg and builds the configured level.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	g := &Engine{
		Config:  cfg,
		World:   NewWorld(),
		level:   cfg.LevelSet()[cfg.Level],
		log:     zap.NewNop(),
		players: make(map[string]*Player),
		ai:      newAIDirector(cfg),
		slots:   make(map[EntityID]int),
		actions: make(chan Action, 256),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := BuildBattlefield(g.World, cfg, g.level); err != nil {
		return nil, fmt.Errorf("build level %q: %w", g.level.Name, err)
	}
	g.log.Info("level loaded", zap.String("level", g.level.Name), zap.Int("entities", g.World.Len()))
	return g, nil
}

// OnTick sets a callback that is invoked after every game tick with a snapshot.
// Used by the network server to broadcast state to clients.
func (g *Engine) OnTick(fn func(Snapshot)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onTick = fn
}

// Run drives the simulation at the configured tick rate until ctx is
// cancelled or Stop is called.
func (g *Engine) Run(ctx context.Context) {
	dt := g.Config.TickDuration()
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-g.done:
			return
		case <-ticker.C:
			g.Tick(dt)
		}
	}
}

// Stop halts the game loop. It is safe to call more than once.
func (g *Engine) Stop() {
	g.stopOnce.Do(func() { close(g.done) })
}

// EnqueueAction sends a player action to be processed on the next tick.
func (g *Engine) EnqueueAction(a Action) {
	select {
	case g.actions <- a:
	default:
		// Drop action if buffer is full
	}
}

// AddPlayer seats a player as P1 or P2.
func (g *Engine) AddPlayer(id, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusLobby {
		return ErrGameRunning
	}
	if _, exists := g.players[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
	}
	if len(g.players) >= g.Config.MaxPlayers {
		return fmt.Errorf("%w (%d/%d players)", ErrGameFull, len(g.players), g.Config.MaxPlayers)
	}

	owner := OwnerP1
	for _, p := range g.players {
		if p.Owner == OwnerP1 {
			owner = OwnerP2
		}
	}
	g.players[id] = &Player{ID: id, Name: name, Owner: owner, Lives: g.Config.PlayerLives}
	g.log.Info("player joined", zap.String("player", id), zap.String("name", name), zap.Stringer("owner", owner))
	return nil
}

// RemovePlayer drops a player and their tank.
func (g *Engine) RemovePlayer(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[id]
	if !ok {
		return
	}
	if p.Tank != 0 {
		g.World.Despawn(p.Tank)
	}
	var stars []EntityID
	g.World.EachKind(KindStar, func(e *Entity) bool {
		if e.Star.PlayerID == id {
			stars = append(stars, e.ID)
		}
		return true
	})
	for _, s := range stars {
		g.World.Despawn(s)
	}
	delete(g.players, id)
	g.log.Info("player left", zap.String("player", id))
}

// StartGame transitions the game from lobby to running and queues the
// first tanks.
func (g *Engine) StartGame() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusLobby {
		return ErrGameRunning
	}
	if len(g.players) < 1 {
		return ErrNoPlayers
	}
	g.status = StatusRunning
	for _, p := range g.playerList() {
		g.spawnStar(p.Owner, ClassPlayer, g.Config.PlayerSpawn(p.Owner), p.ID, false)
	}
	if g.ai.reserve > 0 && g.Config.AIMaxOnField > 0 {
		g.spawnEnemy()
	}
	g.cmds.Apply(g.World)
	g.log.Info("game started", zap.Int("players", len(g.players)), zap.Int("reserve", g.ai.reserve))
	return nil
}

// playerList returns the players in seat order.
func (g *Engine) playerList() []*Player {
	list := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b *Player) int { return int(a.Owner) - int(b.Owner) })
	return list
}

// Tick advances the simulation by dt and publishes a snapshot.
// The snapshot is taken under the lock and the callback runs after it is
// released, since the callback may call back into the engine.
func (g *Engine) Tick(dt time.Duration) {
	g.mu.Lock()
	if g.status == StatusRunning {
		g.step(dt)
	} else {
		g.drainActions()
	}
	snap := g.snapshotLocked()
	onTick := g.onTick
	g.mu.Unlock()

	if onTick != nil {
		onTick(snap)
	}
}

// step runs one tick's phases. MUST be called while g.mu is held.
func (g *Engine) step(dt time.Duration) {
	g.ticks++
	g.now += dt

	g.drainActions()

	g.tickStars(dt)
	g.tickExplosions(dt)
	g.tickShields(dt)
	g.tickPowerUpTimers(dt)
	g.tickAIDirector(dt)

	g.steerAI(dt)
	for _, p := range g.playerList() {
		if !p.firing {
			continue
		}
		p.firing = false
		if e, ok := g.World.Get(p.Tank); ok && p.Tank != 0 {
			g.fire(e)
		}
	}

	g.takeSnapshot()
	g.World.Each(func(e *Entity) bool {
		switch e.Kind {
		case KindTank:
			g.moveTank(e, dt)
		case KindBullet:
			g.moveBullet(e, dt)
		}
		return true
	})

	g.collectPowerUps()
	g.resolveBullets()

	for _, id := range g.cmds.Apply(g.World) {
		e, _ := g.World.Get(id)
		if e.Tank == nil || e.Tank.PlayerID == "" {
			continue
		}
		if p := g.players[e.Tank.PlayerID]; p != nil {
			p.Tank = id
		}
	}

	g.checkOutcome()
}

// drainActions processes all queued player actions.
func (g *Engine) drainActions() {
	for {
		select {
		case a := <-g.actions:
			p, ok := g.players[a.PlayerID]
			if !ok || g.status != StatusRunning {
				continue
			}
			switch a.Type {
			case ActionMove:
				p.heading = a.Dir
				p.holding = true
				p.heldUntil = g.now + g.Config.InputHold
			case ActionStop:
				p.holding = false
			case ActionFire:
				p.firing = true
			}
		default:
			return
		}
	}
}

// takeSnapshot captures the obstacle view movers resolve against this tick.
func (g *Engine) takeSnapshot() {
	g.snapshot = g.World.Obstacles()
	clear(g.slots)
	for i, o := range g.snapshot {
		g.slots[o.ID] = i
	}
}

// syncMover writes a mover's new box back to its entity and to its slot in
// the tick snapshot so later movers see where it went.
func (g *Engine) syncMover(e *Entity, box Box) {
	e.Box = box
	if i, ok := g.slots[e.ID]; ok {
		g.snapshot[i].Box = box
	}
}

var tankExempt = ExemptKinds(Kinds(KindGrass, KindSnow, KindBullet, KindPowerUp))

func (g *Engine) moveTank(e *Entity, dt time.Duration) {
	t := e.Tank
	var dir Direction
	switch {
	case t.AI != nil:
		if g.clockActive {
			return
		}
		dir = t.AI.Heading
	default:
		p := g.players[t.PlayerID]
		if p == nil || !p.holding || g.now >= p.heldUntil {
			return
		}
		dir = p.heading
	}

	out := ResolveMove(&t.Mover, g.snapshot, dir, t.Speed(g.Config), dt, tankExempt, g.Config.MinCell)
	if t.AI != nil && out.Blocked {
		t.AI.Blocked = true
	}
	if out.Moved || out.Snapped {
		g.syncMover(e, t.Box)
	}
}

// respawnPlayer spends a life on a new tank, or retires the player.
func (g *Engine) respawnPlayer(p *Player) {
	if p.Lives <= 0 {
		p.Out = true
		g.log.Info("player out", zap.String("player", p.ID))
		return
	}
	p.Lives--
	g.spawnStar(p.Owner, ClassPlayer, g.Config.PlayerSpawn(p.Owner), p.ID, false)
}

// checkOutcome ends the game when the base falls, every player is out, or
// the enemy reserve is cleared.
func (g *Engine) checkOutcome() {
	if g.status != StatusRunning {
		return
	}

	broken := false
	g.World.EachKind(KindBase, func(e *Entity) bool {
		broken = e.Broken
		return !broken
	})

	playersOut := true
	for _, p := range g.players {
		if !p.Out {
			playersOut = false
		}
	}

	switch {
	case broken || playersOut:
		g.winner = TeamAI
	case g.ai.reserve == 0 && g.enemiesInPlay() == 0:
		g.winner = TeamPlayers
	default:
		return
	}
	g.status = StatusOver
	g.log.Info("game over",
		zap.String("winner", teamName(g.winner)),
		zap.Uint64("tick", g.ticks),
		zap.Int("enemies_destroyed", g.ai.destroyed),
	)
}

func teamName(t Team) string {
	switch t {
	case TeamPlayers:
		return "players"
	case TeamAI:
		return "ai"
	}
	return "none"
}

func tankFields(e *Entity) []zap.Field {
	return []zap.Field{
		zap.Uint64("id", uint64(e.ID)),
		zap.Stringer("owner", e.Owner),
		zap.Stringer("class", e.Tank.Class),
		zap.Int("level", e.Tank.Level),
		zap.Float64("x", e.Box.Center.X),
		zap.Float64("y", e.Box.Center.Y),
	}
}

// Status returns the current phase and, once over, the winning team.
func (g *Engine) Status() (GameStatus, Team) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status, g.winner
}

// Checksum hashes the world state.
func (g *Engine) Checksum() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.World.Checksum()
}
