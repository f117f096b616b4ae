package game

// EntityView is the render-facing copy of an entity.
type EntityView struct {
	ID       EntityID      `json:"id"`
	Kind     Kind          `json:"kind"`
	Box      Box           `json:"box"`
	Owner    Owner         `json:"owner,omitempty"`
	Brick    BrickFragment `json:"brick,omitempty"`
	Facing   Direction     `json:"facing,omitempty"`
	Sprite   int           `json:"sprite,omitempty"`
	Level    int           `json:"level,omitempty"`
	Shielded bool          `json:"shielded,omitempty"`
	Flashing bool          `json:"flashing,omitempty"`
	PowerUp  PowerUpType   `json:"power_up,omitempty"`
	Large    bool          `json:"large,omitempty"`
	Broken   bool          `json:"broken,omitempty"`
}

// PlayerView is the scoreboard entry for one player.
type PlayerView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner Owner  `json:"owner"`
	Lives int    `json:"lives"`
	Level int    `json:"level"`
	Alive bool   `json:"alive"`
	Out   bool   `json:"out,omitempty"`
}

// Snapshot is a deep copy of the game state safe for serialization.
type Snapshot struct {
	Tick        uint64       `json:"tick"`
	Status      GameStatus   `json:"status"`
	Winner      Team         `json:"winner,omitempty"`
	Level       string       `json:"level"`
	FieldSize   float64      `json:"field_size"`
	MinCell     float64      `json:"min_cell"`
	EnemiesLeft int          `json:"enemies_left"`
	Frozen      bool         `json:"frozen,omitempty"`
	Players     []PlayerView `json:"players"`
	Entities    []EntityView `json:"entities"`
	Checksum    uint64       `json:"checksum"`
}

// Snapshot returns a copy of the current state.
func (g *Engine) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// snapshotLocked copies the state. MUST be called while g.mu is held.
func (g *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		Tick:        g.ticks,
		Status:      g.status,
		Winner:      g.winner,
		Level:       g.level.Name,
		FieldSize:   g.Config.FieldSize(),
		MinCell:     g.Config.MinCell,
		EnemiesLeft: g.Config.AIReserve - g.ai.destroyed,
		Frozen:      g.clockActive,
		Entities:    make([]EntityView, 0, g.World.Len()),
		Checksum:    g.World.Checksum(),
	}

	for _, p := range g.playerList() {
		v := PlayerView{ID: p.ID, Name: p.Name, Owner: p.Owner, Lives: p.Lives, Out: p.Out}
		if e, ok := g.World.Get(p.Tank); ok && e.Tank != nil {
			v.Alive = true
			v.Level = e.Tank.Level
		}
		s.Players = append(s.Players, v)
	}

	g.World.Each(func(e *Entity) bool {
		if e.Kind == KindBoundary {
			return true
		}
		v := EntityView{
			ID:      e.ID,
			Kind:    e.Kind,
			Box:     e.Box,
			Owner:   e.Owner,
			Brick:   e.Brick,
			PowerUp: e.PowerUp,
			Large:   e.Large,
			Broken:  e.Broken,
		}
		switch {
		case e.Tank != nil:
			v.Facing = e.Tank.Facing
			v.Sprite = e.Tank.Sprite
			v.Level = e.Tank.Level
			v.Shielded = e.Tank.Shielded
			v.Flashing = e.Tank.Flashing
		case e.Bullet != nil:
			v.Facing = e.Bullet.Facing
		case e.Star != nil:
			v.Flashing = e.Star.Flashing
		}
		s.Entities = append(s.Entities, v)
		return true
	})
	return s
}
